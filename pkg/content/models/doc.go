// Package models holds the records exchanged with the content backend.
//
// Records are flat JSON objects; prices are decimals serialized as JSON numbers.
package models

import "github.com/shopspring/decimal"

func init() {
	// The content backend stores prices as numeric fields.
	decimal.MarshalJSONWithoutQuotes = true
}
