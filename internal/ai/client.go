package ai

import "context"

// Client produces the raw text of one generation turn. The engine treats
// inference as an external collaborator: it consumes the cumulative text and
// never manages the model call beyond this interface.
type Client interface {
	// StreamGenerate streams the model's output, invoking onDelta for each
	// text fragment as it arrives, and returns the full accumulated text.
	// onDelta returning an error aborts the stream.
	StreamGenerate(ctx context.Context, prompt string, onDelta func(delta string) error) (string, error)
}
