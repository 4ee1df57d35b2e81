package telegram

import (
	tele "gopkg.in/telebot.v3"
)

type Router struct {
	menu      *Menu
	commands  *CommandHandler
	callbacks *CallbackHandler
}

func NewRouter(menu *Menu, cmd *CommandHandler, cb *CallbackHandler) *Router {
	return &Router{
		menu:      menu,
		commands:  cmd,
		callbacks: cb,
	}
}

func (r *Router) Register(b *tele.Bot) {
	// Commands
	b.Handle("/start", r.commands.OnStart)
	b.Handle("/stop", r.commands.OnStop)
	b.Handle("/machines", r.commands.OnMachines)
	b.Handle("/shift", r.commands.OnShift)

	// Reply Keyboard
	b.Handle(&r.menu.BtnMachines, r.commands.OnMachines)
	b.Handle(&r.menu.BtnRefresh, r.callbacks.onRefresh)
	b.Handle(&r.menu.BtnHome, r.commands.OnStart)

	// Callbacks & Text
	b.Handle(tele.OnCallback, r.callbacks.OnCallback)
	b.Handle(tele.OnText, r.commands.OnText)
}
