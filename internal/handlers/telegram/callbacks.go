package telegram

import (
	"context"
	"html"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/iwtcode/oeeMonitor/internal/interfaces"
)

const liveInterval = 3 * time.Second

type CallbackHandler struct {
	menu           *Menu
	subscriptionUC interfaces.SubscriptionUsecase
	monitoringUC   interfaces.MonitoringUsecase
	cmdHandler     *CommandHandler

	liveSessions sync.Map
}

func NewCallbackHandler(
	menu *Menu,
	sUC interfaces.SubscriptionUsecase,
	mUC interfaces.MonitoringUsecase,
	cmd *CommandHandler,
) *CallbackHandler {
	return &CallbackHandler{
		menu:           menu,
		subscriptionUC: sUC,
		monitoringUC:   mUC,
		cmdHandler:     cmd,
	}
}

func (h *CallbackHandler) OnCallback(c tele.Context) error {
	defer c.Respond()
	data := strings.TrimSpace(c.Callback().Data)

	// 1. Static Actions
	switch data {
	case "home":
		h.stopUserLiveSession(c.Sender().ID)
		return h.cmdHandler.OnStart(c)
	case "machines_list":
		h.stopUserLiveSession(c.Sender().ID)
		return h.cmdHandler.OnMachines(c)
	case "refresh":
		return h.onRefresh(c)
	case "unfollow":
		return h.onFollow(c, "")
	}

	// 2. Dynamic Actions (Format: action:machine[:order])
	return h.handleDynamicCallback(c, data)
}

func (h *CallbackHandler) handleDynamicCallback(c tele.Context, data string) error {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) < 2 || parts[1] == "" {
		return nil
	}
	action, machineCode := parts[0], parts[1]

	switch action {
	case "vm": // view machine
		h.stopUserLiveSession(c.Sender().ID)
		return h.onViewMachine(c, machineCode)
	case "follow":
		return h.onFollow(c, machineCode)
	case "live":
		return h.onLiveModeStart(c, machineCode)
	case "stop_live":
		h.stopUserLiveSession(c.Sender().ID)
		return h.onViewMachine(c, machineCode)
	case "shift":
		if len(parts) < 3 {
			return nil
		}
		return h.cmdHandler.sendShiftReport(c, machineCode, parts[2])
	}
	return nil
}

// onRefresh запускает внеочередной опрос шлюза
func (h *CallbackHandler) onRefresh(c tele.Context) error {
	c.Notify(tele.Typing)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := h.monitoringUC.Refresh(ctx); err != nil {
		if c.Callback() != nil {
			c.Respond(&tele.CallbackResponse{Text: "Ошибка обновления"})
		}
	}
	return h.cmdHandler.OnMachines(c)
}

func (h *CallbackHandler) onViewMachine(c tele.Context, machineCode string) error {
	m, ok := h.monitoringUC.Machine(machineCode)
	if !ok {
		c.Respond(&tele.CallbackResponse{Text: "Станок не найден"})
		return h.cmdHandler.OnMachines(c)
	}
	return c.Edit(formatMachine(m), h.menu.BuildMachineView(m))
}

func (h *CallbackHandler) onFollow(c tele.Context, machineCode string) error {
	if err := h.subscriptionUC.Follow(c.Chat().ID, machineCode); err != nil {
		c.Respond(&tele.CallbackResponse{Text: "Ошибка: " + err.Error()})
		return nil
	}
	if machineCode == "" {
		c.Respond(&tele.CallbackResponse{Text: "Уведомления по всем станкам"})
		return nil
	}
	c.Respond(&tele.CallbackResponse{Text: "Уведомления только по " + machineCode})
	return nil
}

// --- Live Mode ---

func (h *CallbackHandler) onLiveModeStart(c tele.Context, machineCode string) error {
	userID := c.Sender().ID
	h.stopUserLiveSession(userID)
	ctx, cancel := context.WithCancel(context.Background())
	h.liveSessions.Store(userID, cancel)

	initialText := "🔴 <b>LIVE: " + html.EscapeString(machineCode) + "</b>\n⏳ Connecting..."
	c.Edit(initialText, h.menu.BuildLiveView(machineCode))
	go h.runLiveUpdateLoop(ctx, c, machineCode)
	return nil
}

func (h *CallbackHandler) runLiveUpdateLoop(ctx context.Context, c tele.Context, machineCode string) {
	ticker := time.NewTicker(liveInterval)
	defer ticker.Stop()
	var lastContent string

	update := func() {
		if ctx.Err() != nil {
			return
		}
		snap := h.monitoringUC.Snapshot()
		timestamp := snap.LastSyncedAt.Format("15:04:05")

		var text string
		if m, ok := h.monitoringUC.Machine(machineCode); ok {
			text = "🔴 <b>LIVE</b> · " + timestamp + "\n\n" + formatMachine(m)
		} else {
			text = "🔴 <b>LIVE: " + html.EscapeString(machineCode) + "</b>\nUpdated: " + timestamp + "\n❌ Нет данных"
		}
		if text != lastContent {
			if err := c.Edit(text, h.menu.BuildLiveView(machineCode)); err != nil {
				h.stopUserLiveSession(c.Sender().ID)
			} else {
				lastContent = text
			}
		}
	}
	update()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

func (h *CallbackHandler) stopUserLiveSession(userID int64) {
	if val, ok := h.liveSessions.LoadAndDelete(userID); ok {
		val.(context.CancelFunc)()
	}
}

func (h *CallbackHandler) stopAllLiveSessions() {
	h.liveSessions.Range(func(key, val any) bool {
		val.(context.CancelFunc)()
		h.liveSessions.Delete(key)
		return true
	})
}
