package telegram

import (
	"fmt"

	tele "gopkg.in/telebot.v3"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

type Menu struct {
	// Reply Main (Нижняя клавиатура)
	ReplyMain   *tele.ReplyMarkup
	BtnMachines tele.Btn
	BtnRefresh  tele.Btn
	BtnHome     tele.Btn

	// Inline
	BtnHomeInline tele.Btn
	BtnBack       tele.Btn
	BtnUnfollow   tele.Btn
}

func NewMenu() *Menu {
	replyMain := &tele.ReplyMarkup{ResizeKeyboard: true}
	inline := &tele.ReplyMarkup{}

	// Reply Buttons (Названия синхронизированы с Inline)
	btnMachines := replyMain.Text("📟 Станки")
	btnRefresh := replyMain.Text("🔄 Обновить")
	btnHome := replyMain.Text("🏠 В начало")

	replyMain.Reply(
		replyMain.Row(btnMachines, btnRefresh),
		replyMain.Row(btnHome),
	)

	return &Menu{
		ReplyMain:     replyMain,
		BtnMachines:   btnMachines,
		BtnRefresh:    btnRefresh,
		BtnHome:       btnHome,
		BtnHomeInline: inline.Data("🏠 В начало", "home"),
		BtnBack:       inline.Data("🔙 Назад", "machines_list"),
		BtnUnfollow:   inline.Data("🔕 Все станки", "unfollow"),
	}
}

// BuildMainMenu создает инлайн меню для команды /start
func (m *Menu) BuildMainMenu() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	btnMachines := markup.Data("📟 Станки", "machines_list")
	btnRefresh := markup.Data("🔄 Обновить", "refresh")

	markup.Inline(
		markup.Row(btnMachines, btnRefresh),
		markup.Row(m.BtnUnfollow),
	)
	return markup
}

func (m *Menu) BuildMachinesList(machines []models.MachineState) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row

	for _, ms := range machines {
		btn := markup.Data(
			fmt.Sprintf("%s %s", statusIcon(ms.Status), machineTitle(ms)),
			fmt.Sprintf("vm:%s", ms.MachineCode),
		)
		rows = append(rows, markup.Row(btn))
	}

	rows = append(rows, markup.Row(markup.Data("🔄 Обновить", "refresh")))
	rows = append(rows, markup.Row(m.BtnHomeInline))

	markup.Inline(rows...)
	return markup
}

func (m *Menu) BuildMachineView(ms models.MachineState) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	rows := []tele.Row{
		markup.Row(markup.Data("🔴 Live", fmt.Sprintf("live:%s", ms.MachineCode))),
		markup.Row(markup.Data("🔔 Следить за станком", fmt.Sprintf("follow:%s", ms.MachineCode))),
	}
	if ms.OrderCode != "" {
		rows = append(rows, markup.Row(markup.Data("📊 Смены заказа", fmt.Sprintf("shift:%s:%s", ms.MachineCode, ms.OrderCode))))
	}
	rows = append(rows, markup.Row(m.BtnBack), markup.Row(m.BtnHomeInline))

	markup.Inline(rows...)
	return markup
}

func (m *Menu) BuildLiveView(machineCode string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("⏹ Остановить", fmt.Sprintf("stop_live:%s", machineCode))),
	)
	return markup
}

func (m *Menu) BuildShiftView(machineCode, orderCode string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("🔄 Пересчитать", fmt.Sprintf("shift:%s:%s", machineCode, orderCode))),
		markup.Row(markup.Data("🔙 К станку", fmt.Sprintf("vm:%s", machineCode))),
	)
	return markup
}
