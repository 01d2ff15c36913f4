package embedding

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a provider failure so callers can react without
// pattern-matching on response text themselves.
type Kind int

const (
	// KindTransient covers network failures, 5xx and timeouts; retryable.
	KindTransient Kind = iota
	// KindQuota covers 429 and quota/rate-limit messages; the credential
	// should be rotated out for the rest of its window.
	KindQuota
	// KindMalformed covers responses that parsed but did not contain the
	// expected payload; not retryable.
	KindMalformed
)

var (
	// ErrQuotaExhausted wraps quota-classified provider failures.
	ErrQuotaExhausted = errors.New("embedding: provider quota exhausted")

	// ErrMalformedResponse wraps structurally unusable provider responses.
	ErrMalformedResponse = errors.New("embedding: malformed provider response")
)

// ClassifyError maps an HTTP status and response body to a Kind. This is
// the single place where provider error text is inspected; quota wording
// varies between providers, so substring matching is unavoidable here.
func ClassifyError(statusCode int, body string) Kind {
	if statusCode == http.StatusTooManyRequests {
		return KindQuota
	}
	lower := strings.ToLower(body)
	if strings.Contains(lower, "quota") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "resource_exhausted") {
		return KindQuota
	}
	if statusCode >= 400 && statusCode < 500 {
		return KindMalformed
	}
	return KindTransient
}
