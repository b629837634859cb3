package ops

import (
	"context"
	"log/slog"
	"time"

	"github.com/instamunch/instamunch-api/internal/authz"
)

// RequirePermissions enforces each operation's requirement against the caller
// identity before the handler runs. Public operations pass through.
func RequirePermissions(m *authz.Matrix) Interceptor {
	return func(ctx context.Context, call *Call, next Next) (any, error) {
		req := call.Definition.Requirement
		if req == nil {
			return next(ctx, call)
		}
		if err := m.Enforce(ctx, *req); err != nil {
			return nil, err
		}
		return next(ctx, call)
	}
}

// Recorder receives the outcome of each invocation.
type Recorder interface {
	ObserveOperation(name string, kind string, outcome string, elapsed time.Duration)
}

// Observe reports every invocation to rec. It sits outside RequirePermissions
// so denials are counted too.
func Observe(rec Recorder) Interceptor {
	return func(ctx context.Context, call *Call, next Next) (any, error) {
		start := time.Now()
		result, err := next(ctx, call)
		if rec != nil {
			rec.ObserveOperation(call.Definition.Name, string(call.Definition.Kind), Outcome(err), time.Since(start))
		}
		return result, err
	}
}

// Logging logs failed invocations. Authorization failures are logged at debug.
func Logging(logger *slog.Logger) Interceptor {
	return func(ctx context.Context, call *Call, next Next) (any, error) {
		result, err := next(ctx, call)
		if err == nil || logger == nil {
			return result, err
		}
		attrs := []any{slog.String("operation", call.Definition.Name), slog.Any("error", err)}
		switch Outcome(err) {
		case OutcomeUnauthenticated, OutcomeForbidden, OutcomeInvalid:
			logger.DebugContext(ctx, "operation rejected", attrs...)
		default:
			logger.ErrorContext(ctx, "operation failed", attrs...)
		}
		return result, err
	}
}
