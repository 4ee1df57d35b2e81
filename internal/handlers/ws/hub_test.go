package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/synchronizer"
)

type stubMonitoring struct {
	machines []models.MachineState
}

func (s *stubMonitoring) Snapshot() synchronizer.Snapshot {
	return synchronizer.Snapshot{Machines: s.machines}
}

func (s *stubMonitoring) Machine(string) (models.MachineState, bool) { return models.MachineState{}, false }
func (s *stubMonitoring) Refresh(context.Context) error              { return nil }

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", hub.Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHubSendsSnapshotThenUpdates(t *testing.T) {
	hub := NewHub(&stubMonitoring{machines: []models.MachineState{{MachineCode: "M-1"}}}, zap.NewNop())
	conn := dial(t, hub)

	first := readMessage(t, conn)
	assert.Equal(t, "snapshot", first.Type)
	require.Len(t, first.Machines, 1)
	assert.Equal(t, "M-1", first.Machines[0].MachineCode)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.Publish(context.Background(), []models.MachineState{{MachineCode: "M-2"}, {MachineCode: "M-3"}}))

	update := readMessage(t, conn)
	assert.Equal(t, "machines", update.Type)
	assert.Len(t, update.Machines, 2)
}

func TestHubForgetsDisconnectedClients(t *testing.T) {
	hub := NewHub(&stubMonitoring{}, zap.NewNop())
	conn := dial(t, hub)

	msg := readMessage(t, conn)
	assert.NotNil(t, msg.Machines)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
