package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/brainiac5/brainiac-server/internal/http/response"
)

// EnvelopeVersion is the envelope format version sent as "v".
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every operation response in the standard
// envelope. Errors become {"success": false, "error": {...}}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope:
		return body, nil
	case *APIError:
		return response.Failure(body.Code, body.Message, body.Details), nil
	case error:
		return response.Failure(response.CodeForStatusText(status), body.Error(), nil), nil
	default:
		return response.Success(v), nil
	}
}
