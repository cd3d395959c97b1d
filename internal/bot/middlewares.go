package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/dmikhr/coinpurse-bot/internal/bot/handlers"
	apperrors "github.com/dmikhr/coinpurse-bot/internal/errors"
	"github.com/dmikhr/coinpurse-bot/internal/ratelimit"
	"github.com/dmikhr/coinpurse-bot/pkg/logger"
	"github.com/dmikhr/coinpurse-bot/pkg/metrics"
)

// RecoveryMiddleware catches panics, reports them via the centralized
// handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *apperrors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler",
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)

					userMsg := "Something went wrong. Please try again later."
					if errHandler != nil {
						appErr := apperrors.NewStorageError(fmt.Errorf("panic recovered: %v", r))
						if msg, _ := errHandler.Handle(context.Background(), appErr); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for
// handler failures. Validation failures and storage faults both resolve to a
// user-facing message here; nothing propagates past this middleware.
func ErrorHandlingMiddleware(errHandler *apperrors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			userMsg := "Something went wrong. Please try again later."
			if errHandler != nil {
				if msg, _ := errHandler.Handle(context.Background(), err); msg != "" {
					userMsg = msg
				}
			}

			if c != nil {
				_ = c.Send(userMsg)
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates with a fresh
// correlation identifier.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()

			userID := int64(0)
			if c != nil && c.Sender() != nil {
				userID = c.Sender().ID
			}

			action := ""
			if c != nil {
				action = c.Text()
			}

			ctx := logger.WithCorrelationID(context.Background())
			correlationID := logger.CorrelationIDFromContext(ctx)

			log.Info("handling update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.String("correlation_id", correlationID),
			)

			err := next(c)

			log.Info("handled update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.String("correlation_id", correlationID),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// MetricsMiddleware measures execution time and status for bot commands.
func MetricsMiddleware(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		operation := "unknown"
		if c != nil {
			if cmd := commandToken(c.Text()); cmd != "" {
				operation = cmd
			}
		}

		status := "ok"
		if err != nil {
			if apperrors.IsValidation(err) {
				status = "rejected"
			} else {
				status = "error"
			}
		}

		metrics.RecordOperation(operation, status, time.Since(start))

		return err
	}
}

// RateLimitMiddleware enforces per-user command rate limits.
func RateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if limiter == nil || rules == nil || !rules.Enabled() {
				return next(c)
			}

			sender := c.Sender()
			if sender == nil || rules.IsWhitelisted(sender.ID) {
				return next(c)
			}

			command := commandToken(c.Text())
			limit, window, err := rules.CommandLimit(command)
			if err != nil {
				log.Error("failed to resolve rate limit",
					slog.String("command", command), slog.Any("error", err))
				return next(c)
			}

			key := fmt.Sprintf("user:%d:%s", sender.ID, command)
			result, err := limiter.Check(context.Background(), key, limit, window)
			if err != nil && result == nil {
				log.Warn("rate limiter error", slog.Int64("user_id", sender.ID), slog.Any("error", err))
				return next(c)
			}

			if result != nil && !result.Allowed {
				log.Warn("rate limit exceeded",
					slog.Int64("user_id", sender.ID), slog.String("command", command))
				return c.Send("Rate limit exceeded. Try again later.")
			}

			return next(c)
		}
	}
}
