package usecases

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor/internal/domain/entities"
	"github.com/iwtcode/oeeMonitor/internal/normalizer"
	"github.com/iwtcode/oeeMonitor/internal/synchronizer"
)

type staticSource []string

func (s staticSource) Fetch(context.Context) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(s))
	for i, r := range s {
		out[i] = json.RawMessage(r)
	}
	return out, nil
}

func TestMonitoringMachineLookup(t *testing.T) {
	src := staticSource{`{"machineCode": "M-1", "status": "run"}`, `{"info": {"code": "M-2"}}`}
	sync := synchronizer.New(src, normalizer.New(zap.NewNop()), zap.NewNop(), synchronizer.Options{Interval: time.Hour})
	u := NewMonitoringUsecase(sync)

	_, ok := u.Machine("M-1")
	assert.False(t, ok, "nothing before the first poll")

	require.NoError(t, u.Refresh(context.Background()))
	assert.Len(t, u.Snapshot().Machines, 2)

	m, ok := u.Machine("M-2")
	require.True(t, ok)
	assert.Equal(t, "M-2", m.MachineCode)

	_, ok = u.Machine("M-9")
	assert.False(t, ok)
}

type fakeSubscriberRepo struct {
	subs map[int64]*entities.Subscriber
}

func (r *fakeSubscriberRepo) Save(sub *entities.Subscriber) error {
	cp := *sub
	r.subs[sub.ID] = &cp
	return nil
}

func (r *fakeSubscriberRepo) GetByID(id int64) (*entities.Subscriber, error) {
	return r.subs[id], nil
}

func (r *fakeSubscriberRepo) SetActive(id int64, active bool) error {
	r.subs[id].Active = active
	return nil
}

func (r *fakeSubscriberRepo) SetMachineFilter(id int64, machineCode string) error {
	r.subs[id].MachineFilter = machineCode
	return nil
}

func (r *fakeSubscriberRepo) ListActive() ([]entities.Subscriber, error) {
	var out []entities.Subscriber
	for _, s := range r.subs {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func TestSubscriptionLifecycle(t *testing.T) {
	repo := &fakeSubscriberRepo{subs: map[int64]*entities.Subscriber{}}
	u := NewSubscriptionUsecase(repo)

	require.NoError(t, u.Subscribe(&entities.Subscriber{ID: 42, FirstName: "Ana"}))
	require.NoError(t, u.Follow(42, " M-7 "))

	sub, err := u.GetSubscriber(42)
	require.NoError(t, err)
	assert.True(t, sub.Wants("M-7"))
	assert.False(t, sub.Wants("M-8"))

	active, err := u.ActiveSubscribers()
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, u.Unsubscribe(42))
	active, err = u.ActiveSubscribers()
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, u.Subscribe(&entities.Subscriber{ID: 42}))
	sub, _ = u.GetSubscriber(42)
	assert.True(t, sub.Active)
}
