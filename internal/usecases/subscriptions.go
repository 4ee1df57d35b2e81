package usecases

import (
	"strings"

	"github.com/iwtcode/oeeMonitor/internal/domain/entities"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
)

type subscriptionUsecase struct {
	repo interfaces.SubscriberRepository
}

func NewSubscriptionUsecase(repo interfaces.SubscriberRepository) interfaces.SubscriptionUsecase {
	return &subscriptionUsecase{repo: repo}
}

// Subscribe регистрирует чат (или реактивирует ранее отписанный)
func (u *subscriptionUsecase) Subscribe(sub *entities.Subscriber) error {
	sub.Active = true
	return u.repo.Save(sub)
}

func (u *subscriptionUsecase) Unsubscribe(id int64) error {
	return u.repo.SetActive(id, false)
}

// Follow ограничивает уведомления одним станком; пустой код - все станки
func (u *subscriptionUsecase) Follow(id int64, machineCode string) error {
	return u.repo.SetMachineFilter(id, strings.TrimSpace(machineCode))
}

func (u *subscriptionUsecase) GetSubscriber(id int64) (*entities.Subscriber, error) {
	return u.repo.GetByID(id)
}

func (u *subscriptionUsecase) ActiveSubscribers() ([]entities.Subscriber, error) {
	return u.repo.ListActive()
}
