package handlers

import (
	"context"
	"sync"
	"time"

	"power_monitor/internal/models"
	"power_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	enabled bool

	registered  models.Operator
	registerErr error
	token       string
	signInErr   error
	operator    models.Operator
	authErr     error

	lastUsername string
	lastPassword string
	lastToken    string
}

func (m *mockAuth) Enabled() bool { return m.enabled }

func (m *mockAuth) Register(_ context.Context, username, password string) (models.Operator, error) {
	m.lastUsername, m.lastPassword = username, password
	return m.registered, m.registerErr
}

func (m *mockAuth) SignIn(_ context.Context, username, password string) (string, error) {
	m.lastUsername, m.lastPassword = username, password
	return m.token, m.signInErr
}

func (m *mockAuth) Authenticate(token string) (models.Operator, error) {
	m.lastToken = token
	return m.operator, m.authErr
}

type mockSwitch struct {
	mu       sync.Mutex
	err      error
	requests []service.ControlRequest
}

func (m *mockSwitch) Request(_ context.Context, req service.ControlRequest) (service.PendingCommand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return service.PendingCommand{}, m.err
	}
	m.requests = append(m.requests, req)
	return service.PendingCommand{Value: req.Value, Device: req.Device, FireAt: time.Now().Add(time.Second)}, nil
}

type mockMonitoring struct {
	snap   models.Snapshot
	status service.SwitchStatus
}

func (m *mockMonitoring) GetSnapshot() models.Snapshot          { return m.snap }
func (m *mockMonitoring) GetSwitchStatus() service.SwitchStatus { return m.status }

type mockForecaster struct {
	res   service.ForecastResult
	err   error
	calls int
}

func (m *mockForecaster) Predict(context.Context) (service.ForecastResult, error) {
	m.calls++
	return m.res, m.err
}

type mockReadings struct {
	rows   []models.Reading
	latest *models.Reading
	dates  []string
	err    error

	lastParams service.HistoryParams
}

func (m *mockReadings) History(_ context.Context, p service.HistoryParams) ([]models.Reading, error) {
	m.lastParams = p
	return m.rows, m.err
}

func (m *mockReadings) Latest(context.Context) (*models.Reading, error) {
	return m.latest, m.err
}

func (m *mockReadings) AvailableDates(context.Context) ([]string, error) {
	return m.dates, m.err
}

type mockCommandLog struct {
	resp     []models.CommandEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockCommandLog) ListCommands(_ context.Context, f service.LogFilter) ([]models.CommandEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
