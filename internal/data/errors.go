package data

import (
	"errors"
	"fmt"
)

// ErrNotSupported is returned by a source that does not offer an endpoint
var ErrNotSupported = errors.New("endpoint not supported by source")

// ProviderErrorKind classifies provider failures
type ProviderErrorKind int

const (
	// Transport covers network failures before a response was received
	Transport ProviderErrorKind = iota
	// Unreachable covers non-2xx responses
	Unreachable
	// MalformedResponse covers bodies that could not be decoded
	MalformedResponse
)

func (k ProviderErrorKind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Unreachable:
		return "unreachable"
	case MalformedResponse:
		return "malformed response"
	default:
		return "unknown"
	}
}

// ProviderError 数据源请求失败
type ProviderError struct {
	Source   string
	Endpoint EndpointKind
	Kind     ProviderErrorKind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Source, e.Endpoint, e.Kind)
	if e.Kind == Unreachable {
		msg = fmt.Sprintf("%s (status=%d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a ProviderError of the given kind
func IsKind(err error, kind ProviderErrorKind) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == kind
}
