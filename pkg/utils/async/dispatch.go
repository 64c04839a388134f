package async

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

var inflight sync.WaitGroup

// Dispatch runs handler in a new goroutine with a background context that
// keeps the caller's logger. Errors and panics are logged, never returned.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}

// Wait blocks until every dispatched handler has returned. Used on shutdown
// and in tests.
func Wait() {
	inflight.Wait()
}
