package telegram

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"

	"github.com/iwtcode/oeeMonitor"
)

type Bot struct {
	Bot    *tele.Bot
	Router *Router
	log    *zap.Logger
}

func NewBot(cfg *oeeMonitor.Config, router *Router, log *zap.Logger) (*Bot, error) {
	pref := tele.Settings{
		Token:     cfg.TgToken,
		Poller:    &tele.LongPoller{Timeout: 10 * time.Second},
		ParseMode: tele.ModeHTML,
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}

	log = log.Named("telegram")
	b.Use(middleware.Recover())
	b.Use(LogMiddleware(log))

	// Регистрируем хендлеры
	router.Register(b)

	// Устанавливаем команды для меню
	err = b.SetCommands([]tele.Command{
		{Text: "start", Description: "Подписаться на уведомления"},
		{Text: "machines", Description: "Состояние станков"},
		{Text: "shift", Description: "Смены заказа: /shift <станок> <заказ>"},
		{Text: "stop", Description: "Отписаться"},
	})
	if err != nil {
		log.Warn("⚠️ Не удалось обновить список команд", zap.Error(err))
	}

	return &Bot{
		Bot:    b,
		Router: router,
		log:    log,
	}, nil
}

func (b *Bot) Start() {
	b.log.Info("🤖 Бот запущен...")
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.Router.callbacks.stopAllLiveSessions()
	b.Bot.Stop()
}
