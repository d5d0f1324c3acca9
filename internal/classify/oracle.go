// Package classify turns a detected version change into a structured
// assessment (summary, severity, mandatory-upgrade flag) by consulting a
// text-completion oracle.
package classify

import (
	"context"
	"fmt"

	"github.com/relwatch/relwatch/internal/config"
)

// Oracle is a single-shot text completion backend.
type Oracle interface {
	// Name identifies the backend in logs.
	Name() string

	// Complete sends one prompt and returns the raw model output.
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewOracle builds the configured oracle. The provider name is matched
// case-sensitively against the documented values.
func NewOracle(cfg config.AIConfig) (Oracle, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewGemini(cfg)
	case "openai":
		return NewOpenAI(cfg)
	case "noop":
		return NewNoop(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q (supported: gemini, openai, noop)", cfg.Provider)
	}
}
