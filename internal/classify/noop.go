package classify

import (
	"context"
	"errors"
)

// errNoOracle is returned by NoopOracle for every completion.
var errNoOracle = errors.New("AI oracle not configured; set ai.provider and an API key")

// NoopOracle is used when no oracle is configured. Every completion fails,
// which the classifier turns into its deterministic fallback assessment, so
// monitoring keeps working without an AI backend.
type NoopOracle struct{}

func NewNoop() *NoopOracle { return &NoopOracle{} }

func (n *NoopOracle) Name() string { return "noop" }

func (n *NoopOracle) Complete(_ context.Context, _ string) (string, error) {
	return "", errNoOracle
}
