package safe

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
)

// Run executes handler synchronously and converts a panic into an error
//
// Behavior:
//   - Returns the handler's error unchanged
//   - Recovers from panics, logs the stack and returns an error carrying the recovered value
func Run(ctx context.Context, handler func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			logging.From(ctx).Error("panic in pipeline stage",
				"recover", r,
				"stack", string(stack))
			err = goerr.New("panic in pipeline stage", goerr.V("recover", r))
		}
	}()

	return handler(ctx)
}
