package slash

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Middleware wraps a handler (logging, access checks, metrics).
type Middleware func(Handler) Handler

// Apply wraps h with mws; the first middleware in the list is the outermost.
func Apply(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// WithGuildOnly answers invocations outside a guild with an ephemeral notice
// instead of running the handler.
func WithGuildOnly(notice string) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, inv *Invocation) error {
			if inv.GuildID() == "" {
				return inv.ReplyEphemeral(ctx, notice)
			}
			return next.Handle(ctx, inv)
		})
	}
}

// WithLogging logs every handler run with its duration and outcome.
func WithLogging(log *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, inv *Invocation) error {
			start := time.Now()
			err := next.Handle(ctx, inv)

			fields := []zap.Field{
				zap.String("command", inv.Name()),
				zap.String("invocation", inv.ID),
				zap.String("guild", inv.GuildID()),
				zap.String("user", inv.AuthorID()),
				zap.Duration("took", time.Since(start)),
			}
			if err != nil {
				log.Warn("slash command failed", append(fields, zap.Error(err))...)
			} else {
				log.Debug("slash command handled", fields...)
			}
			return err
		})
	}
}
