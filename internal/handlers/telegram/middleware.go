package telegram

import (
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func LogMiddleware(log *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			user := c.Sender()
			if user == nil {
				return err
			}
			username := user.FirstName
			if user.Username != "" {
				username += " (@" + user.Username + ")"
			}

			// Определяем контент сообщения
			content := strings.TrimSpace(c.Text())
			kind := "TEXT"

			if cb := c.Callback(); cb != nil {
				kind = "BTN"
				// Data содержит payload, у статических кнопок может быть пустой
				content = strings.TrimSpace(cb.Data)
				if content == "" {
					content = strings.TrimSpace(cb.Unique)
				}
			}

			fields := []zap.Field{
				zap.Int64("user_id", user.ID),
				zap.String("user", username),
				zap.String("kind", kind),
				zap.String("content", content),
				zap.Duration("duration", duration),
			}
			if err != nil {
				log.Warn("update failed", append(fields, zap.Error(err))...)
			} else {
				log.Info("update", fields...)
			}
			return err
		}
	}
}
