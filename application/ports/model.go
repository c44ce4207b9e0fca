package ports

import (
	"context"
	"encoding/json"
)

// StructuredRequest is one structured-output generation request. Schema
// is a JSON Schema document the backend is forced to answer through.
type StructuredRequest struct {
	SystemInstruction string
	Prompt            string
	Schema            map[string]interface{}
}

// ModelClient defines the external text-generation backend. A response
// that does not parse as the requested structure is an error; callers
// decide whether to mask it with a fallback. Rate-limit and quota
// failures come back as typed application errors so callers can tell
// them apart from generic failures.
type ModelClient interface {
	// GenerateStructured issues one request and returns the raw
	// structured payload. No retries are attempted.
	GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
}
