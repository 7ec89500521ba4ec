package ports

import "context"

// TextOracle is the boundary to the external text-generation service: one
// natural-language prompt in, free-form text out. No streaming, no
// conversation state across calls.
//
// The oracle is untrusted; callers must treat its output as loosely
// structured text and parse defensively.
type TextOracle interface {
	// Available reports whether the oracle was configured. Callers degrade
	// to sentinel values when it returns false instead of calling Generate.
	Available() bool
	Generate(ctx context.Context, prompt string) (string, error)
}
