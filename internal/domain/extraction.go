package domain

import (
	"context"
	"encoding/json"
)

// ExtractionRequest is one schema-constrained extraction call: a system
// instruction, a user payload, and the JSON schema the output must satisfy.
// Name labels the schema for the provider and for metrics.
type ExtractionRequest struct {
	Name   string
	System string
	User   string
	Schema json.RawMessage
}

// Extractor invokes a language model under a strict output schema and
// unmarshals the result into out. It either produces a value of the exact
// requested shape or fails; partial or schema-violating output is an error.
type Extractor interface {
	Extract(ctx context.Context, req ExtractionRequest, out any) error
}
