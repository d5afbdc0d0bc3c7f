package upstream

import "context"

// Transport performs exactly one attempt of a request and returns the raw
// body. Failures are marked with ErrTransient or ErrPermanent.
type Transport interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}
