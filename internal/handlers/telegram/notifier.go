package telegram

import (
	"context"
	"sync"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
)

// Sender is the part of *tele.Bot the notifier needs.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier sends a message to subscribed chats whenever a machine changes
// status between two published lists. The first list only sets the baseline.
type Notifier struct {
	sender         Sender
	subscriptionUC interfaces.SubscriptionUsecase
	log            *zap.Logger

	mu       sync.Mutex
	primed   bool
	statuses map[string]models.MachineStatus
}

func NewNotifier(sender Sender, subscriptionUC interfaces.SubscriptionUsecase, log *zap.Logger) *Notifier {
	return &Notifier{
		sender:         sender,
		subscriptionUC: subscriptionUC,
		log:            log.Named("notifier"),
		statuses:       make(map[string]models.MachineStatus),
	}
}

func (n *Notifier) Publish(ctx context.Context, machines []models.MachineState) error {
	changes := n.diff(machines)
	if len(changes) == 0 {
		return nil
	}

	subs, err := n.subscriptionUC.ActiveSubscribers()
	if err != nil {
		return err
	}

	for _, ch := range changes {
		text := formatStatusChange(ch.machine, ch.from)
		for _, sub := range subs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !sub.Wants(ch.machine.MachineCode) {
				continue
			}
			if _, err := n.sender.Send(tele.ChatID(sub.ID), text, tele.ModeHTML); err != nil {
				n.log.Warn("notification failed",
					zap.Int64("chat_id", sub.ID),
					zap.String("machine", ch.machine.MachineCode),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

type statusChange struct {
	machine models.MachineState
	from    models.MachineStatus
}

func (n *Notifier) diff(machines []models.MachineState) []statusChange {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Only machines of the current list are remembered; one that drops out
	// and comes back is treated as new.
	var changes []statusChange
	next := make(map[string]models.MachineStatus, len(machines))
	for _, m := range machines {
		prev, seen := n.statuses[m.MachineCode]
		if n.primed && seen && prev != m.Status {
			changes = append(changes, statusChange{machine: m, from: prev})
		}
		next[m.MachineCode] = m.Status
	}
	n.statuses = next
	n.primed = true
	return changes
}
