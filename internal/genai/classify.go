package genai

import "strings"

// Kind buckets a generation failure for user-facing reporting.
type Kind int

const (
	// KindGeneric covers failures with no recognizable cause.
	KindGeneric Kind = iota
	// KindQuota marks rate-limit/quota errors from the endpoint.
	KindQuota
	// KindFormat marks errors indicating the submitted content's
	// format or type was rejected.
	KindFormat
)

// Classify inspects an endpoint error's text, case-insensitively.
// Quota markers take precedence over format markers.
func Classify(err error) Kind {
	if err == nil {
		return KindGeneric
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "quota") {
		return KindQuota
	}
	if strings.Contains(msg, "format") || strings.Contains(msg, "type") {
		return KindFormat
	}
	return KindGeneric
}
