package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/synchronizer"
)

type stubMonitoring struct {
	machines   []models.MachineState
	refreshErr error
	refreshes  int
}

func (s *stubMonitoring) Snapshot() synchronizer.Snapshot {
	return synchronizer.Snapshot{Machines: s.machines, State: synchronizer.StateIdle}
}

func (s *stubMonitoring) Machine(code string) (models.MachineState, bool) {
	for _, m := range s.machines {
		if m.MachineCode == code {
			return m, true
		}
	}
	return models.MachineState{}, false
}

func (s *stubMonitoring) Refresh(context.Context) error {
	s.refreshes++
	return s.refreshErr
}

// stubAnalytics validates like the real use case and records store access.
type stubAnalytics struct {
	storeCalls int
	storeErr   error
	commands   []models.CacheCommand
}

func (s *stubAnalytics) ShiftReport(_ context.Context, machineCode, orderCode string) (*models.ShiftReport, error) {
	var missing []string
	if machineCode == "" {
		missing = append(missing, "machineCode")
	}
	if orderCode == "" {
		missing = append(missing, "orderCode")
	}
	if len(missing) > 0 {
		return nil, &models.MissingParametersError{Params: missing}
	}
	s.storeCalls++
	if s.storeErr != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUpstreamQuery, s.storeErr)
	}
	return &models.ShiftReport{
		MachineCode: machineCode,
		OrderCode:   orderCode,
		Buckets:     [3]models.ShiftBucket{{Shift: models.ShiftMorning}, {Shift: models.ShiftAfternoon}, {Shift: models.ShiftNight, OK: 12}},
		Sources:     [3]models.BucketSource{models.SourceLive, models.SourceLive, models.SourceSynthetic},
	}, nil
}

func (s *stubAnalytics) CacheControl(_ context.Context, cmd models.CacheCommand) error {
	switch cmd.Action {
	case models.CacheActionEvict:
		if cmd.MachineCode == "" || cmd.OrderCode == "" {
			return &models.MissingParametersError{Params: []string{"machineCode", "orderCode"}}
		}
	case models.CacheActionClear:
	default:
		return fmt.Errorf("%w: %q", models.ErrUnknownCacheAction, cmd.Action)
	}
	s.commands = append(s.commands, cmd)
	return nil
}

func newTestRouter(mon *stubMonitoring, an *stubAnalytics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewHandler(mon, an, zap.NewNop()), nil)
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListMachines(t *testing.T) {
	r := newTestRouter(&stubMonitoring{machines: []models.MachineState{{MachineCode: "M-1"}}}, &stubAnalytics{})

	w := do(r, http.MethodGet, "/api/machines", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["machines"], 1)
	assert.Equal(t, "idle", body["state"])

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/machines/M-1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/machines/M-9", "").Code)
}

func TestRefresh(t *testing.T) {
	mon := &stubMonitoring{}
	r := newTestRouter(mon, &stubAnalytics{})

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/machines/refresh", "").Code)

	mon.refreshErr = fmt.Errorf("%w: dial tcp: connection refused", models.ErrFatalFetch)
	w := do(r, http.MethodPost, "/api/machines/refresh", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "fetch_failed", decode(t, w)["error"])
	assert.Equal(t, 2, mon.refreshes)
}

func TestShiftsMissingOrderCode(t *testing.T) {
	an := &stubAnalytics{}
	r := newTestRouter(&stubMonitoring{}, an)

	w := do(r, http.MethodGet, "/api/shifts?machineCode=M-1", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "missing_parameters", body["error"])
	assert.Equal(t, []any{"orderCode"}, body["params"])
	assert.Zero(t, an.storeCalls)
}

func TestShiftsReport(t *testing.T) {
	r := newTestRouter(&stubMonitoring{}, &stubAnalytics{})

	w := do(r, http.MethodGet, "/api/shifts?machineCode=M-1&orderCode=OF-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var report models.ShiftReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, models.SourceSynthetic, report.Sources[2])
	assert.Equal(t, int64(12), report.Buckets[2].OK)
}

func TestShiftsUpstreamFailure(t *testing.T) {
	r := newTestRouter(&stubMonitoring{}, &stubAnalytics{storeErr: errors.New("db down")})

	w := do(r, http.MethodGet, "/api/shifts?machineCode=M-1&orderCode=OF-1", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "upstream_query_failed", decode(t, w)["error"])
}

func TestShiftCacheControl(t *testing.T) {
	an := &stubAnalytics{}
	r := newTestRouter(&stubMonitoring{}, an)

	w := do(r, http.MethodPost, "/api/shift-cache", `{"action": "evict", "machineCode": "M-1", "orderCode": "OF-1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/shift-cache", `{"action": "clear"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, an.commands, 2)

	w = do(r, http.MethodPost, "/api/shift-cache", `{"action": "explode"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown_action", decode(t, w)["error"])

	w = do(r, http.MethodPost, "/api/shift-cache", `{"action": "evict"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_parameters", decode(t, w)["error"])

	w = do(r, http.MethodPost, "/api/shift-cache", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, an.commands, 2)
}
