package errors

import (
	"errors"
	"fmt"
)

// StatusCarrier is implemented by errors that originate from an upstream HTTP response.
type StatusCarrier interface {
	StatusCode() int
}

type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	UpstreamStatus int `json:"upstream_status,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var carrier StatusCarrier
	if errors.As(err, &carrier) {
		d.UpstreamStatus = carrier.StatusCode()
	}

	return d
}
