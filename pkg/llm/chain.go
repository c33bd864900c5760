package llm

import "context"

// Middleware wraps a Client with additional behavior.
// Middlewares are composed with Chain to build a processing pipeline.
type Middleware func(next Client) Client

// clientFunc adapts plain functions to the Client interface.
type clientFunc struct {
	generate  func(context.Context, Request) (Result, error)
	modelName func() string
}

func (f clientFunc) Generate(ctx context.Context, req Request) (Result, error) {
	return f.generate(ctx, req)
}

func (f clientFunc) ModelName() string {
	return f.modelName()
}

// WrapClient creates a Client from the provided function implementations.
// Helper for middleware implementations that need to wrap behavior.
func WrapClient(
	generate func(context.Context, Request) (Result, error),
	modelName func() string,
) Client {
	return clientFunc{generate: generate, modelName: modelName}
}

// Chain composes middlewares around a base Client.
// Earlier middlewares are outermost: Chain(client, mw1, mw2) yields the call
// stack mw1 -> mw2 -> client, so mw1 sees the request first and the final
// result last.
func Chain(base Client, middlewares ...Middleware) Client {
	client := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		client = middlewares[i](client)
	}
	return client
}
