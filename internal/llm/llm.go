package llm

import "context"

// Gateway sends one prompt to a generative model and returns the raw text it produced.
type Gateway interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, prompt string) (string, error)

// Invoke calls f.
func (f GatewayFunc) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
