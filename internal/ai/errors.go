package ai

import (
	"errors"
	"fmt"
)

// EnrichmentErrorKind classifies enrichment failures
type EnrichmentErrorKind int

const (
	// ModelUnavailable covers network, auth and rate-limit failures of a model call
	ModelUnavailable EnrichmentErrorKind = iota
	// MalformedInsight covers insight replies that are not the required object
	MalformedInsight
	// UnexpectedVerdictFormat covers honeypot replies other than true/false
	UnexpectedVerdictFormat
)

func (k EnrichmentErrorKind) String() string {
	switch k {
	case ModelUnavailable:
		return "model unavailable"
	case MalformedInsight:
		return "malformed insight"
	case UnexpectedVerdictFormat:
		return "unexpected verdict format"
	default:
		return "unknown"
	}
}

// EnrichmentError 大模型增强失败
type EnrichmentError struct {
	Kind  EnrichmentErrorKind
	Reply string
	Err   error
}

func (e *EnrichmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Reply != "" {
		return fmt.Sprintf("%s: %.64q", e.Kind, e.Reply)
	}
	return e.Kind.String()
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an EnrichmentError of the given kind
func IsKind(err error, kind EnrichmentErrorKind) bool {
	var ee *EnrichmentError
	return errors.As(err, &ee) && ee.Kind == kind
}
