package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 25
	// MaxPageSize caps how many records any list request can ask the content backend for.
	MaxPageSize = 100
)

// Params holds 1-based page pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Normalize enforces the first page, the default size and the maximum size.
func (p Params) Normalize() Params {
	return Params{Page: NormalizePage(p.Page), PageSize: NormalizePageSize(p.PageSize)}
}

// NormalizePage clamps page numbers below 1 to the first page.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// NormalizePageSize enforces the configured default and maximum sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// FromQuery reads page and pageSize from request query values. Unparseable values fall back to defaults.
func FromQuery(values url.Values) Params {
	return Params{
		Page:     atoi(values.Get("page")),
		PageSize: atoi(values.Get("pageSize")),
	}.Normalize()
}

func atoi(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
