package telegram

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/iwtcode/oeeMonitor/internal/domain/entities"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
)

const requestTimeout = 10 * time.Second

type CommandHandler struct {
	menu           *Menu
	subscriptionUC interfaces.SubscriptionUsecase
	monitoringUC   interfaces.MonitoringUsecase
	analyticsUC    interfaces.AnalyticsUsecase
}

func NewCommandHandler(
	menu *Menu,
	subscriptionUC interfaces.SubscriptionUsecase,
	monitoringUC interfaces.MonitoringUsecase,
	analyticsUC interfaces.AnalyticsUsecase,
) *CommandHandler {
	return &CommandHandler{
		menu:           menu,
		subscriptionUC: subscriptionUC,
		monitoringUC:   monitoringUC,
		analyticsUC:    analyticsUC,
	}
}

// OnStart подписывает чат на уведомления о смене статуса
func (h *CommandHandler) OnStart(c tele.Context) error {
	sub := &entities.Subscriber{
		ID:        c.Chat().ID,
		FirstName: c.Sender().FirstName,
		UserName:  c.Sender().Username,
	}
	if err := h.subscriptionUC.Subscribe(sub); err != nil {
		return c.Send("Ошибка подписки: " + html.EscapeString(err.Error()))
	}

	text := "👋 <b>OEE Monitor</b>\n\n🔔 Уведомления о смене статуса станков включены."
	if c.Callback() != nil {
		return c.Edit(text, h.menu.BuildMainMenu())
	}
	if err := c.Send(text, h.menu.ReplyMain); err != nil {
		return err
	}
	return c.Send("Главное меню.", h.menu.BuildMainMenu())
}

func (h *CommandHandler) OnStop(c tele.Context) error {
	if err := h.subscriptionUC.Unsubscribe(c.Chat().ID); err != nil {
		return c.Send("Ошибка: " + html.EscapeString(err.Error()))
	}
	return c.Send("🔕 Уведомления отключены. /start чтобы включить снова.", tele.RemoveKeyboard)
}

func (h *CommandHandler) OnMachines(c tele.Context) error {
	snap := h.monitoringUC.Snapshot()
	text := formatMachinesList(snap)
	markup := h.menu.BuildMachinesList(snap.Machines)

	if c.Callback() != nil {
		return c.Edit(text, markup)
	}
	return c.Send(text, markup)
}

// OnShift обрабатывает /shift <станок> <заказ>
func (h *CommandHandler) OnShift(c tele.Context) error {
	args := c.Args()
	var machineCode, orderCode string
	if len(args) > 0 {
		machineCode = args[0]
	}
	if len(args) > 1 {
		orderCode = args[1]
	}
	return h.sendShiftReport(c, machineCode, orderCode)
}

func (h *CommandHandler) sendShiftReport(c tele.Context, machineCode, orderCode string) error {
	c.Notify(tele.Typing)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	report, err := h.analyticsUC.ShiftReport(ctx, machineCode, orderCode)
	if err != nil {
		var missing *models.MissingParametersError
		if errors.As(err, &missing) {
			return c.Send("⚠️ Не указаны: <code>" + strings.Join(missing.Params, ", ") + "</code>\nФормат: /shift &lt;станок&gt; &lt;заказ&gt;")
		}
		return c.Send("❌ Ошибка расчета смен:\n" + html.EscapeString(err.Error()))
	}

	text := formatShiftReport(report)
	markup := h.menu.BuildShiftView(report.MachineCode, report.OrderCode)
	if c.Callback() != nil {
		return c.Edit(text, markup)
	}
	return c.Send(text, markup)
}

func (h *CommandHandler) OnText(c tele.Context) error {
	input := strings.TrimSpace(c.Text())

	// Menu Commands (Reply Keyboard)
	switch input {
	case h.menu.BtnHome.Text:
		return h.OnStart(c)
	case h.menu.BtnMachines.Text:
		return h.OnMachines(c)
	}

	// Код станка текстом - показываем карточку
	if m, ok := h.monitoringUC.Machine(input); ok {
		return c.Send(formatMachine(m), h.menu.BuildMachineView(m))
	}
	return c.Send("Не понял. Выберите действие:", h.menu.BuildMainMenu())
}
