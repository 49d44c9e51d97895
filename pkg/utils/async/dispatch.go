package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/deepcheck/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatch runs handler in a new goroutine and returns a channel closed when it finishes.
//
// The handler gets a background context that keeps the logger of ctx but not its
// cancellation, so UI callbacks can return while the pipeline keeps running.
// Panics are recovered and reported together with the stack.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) <-chan struct{} {
	newCtx := newBackgroundContext(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(newCtx).Error("panic in async handler",
					"recover", r,
					"stack", string(debug.Stack()))
				errutil.Handle(newCtx, "panic in async handler", goerr.New("panic in async handler", goerr.V("recover", r)))
			}
		}()

		if err := handler(newCtx); err != nil {
			ctxlog.From(newCtx).Error("error in async handler", "error", err)
		}
	}()

	return done
}

func newBackgroundContext(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
