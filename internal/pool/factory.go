package pool

import "context"

// Factory creates and destroys the pooled resources. Implementations are
// supplied by the caller; the engine never inspects a resource beyond
// identity.
//
// Create may take arbitrary time and may fail; the engine invokes it off
// the serialized state region, one attempt per request. Destroy errors are
// logged and otherwise ignored.
type Factory[T any] interface {
	Create(ctx context.Context) (T, error)
	Destroy(ctx context.Context, res T) error
}
