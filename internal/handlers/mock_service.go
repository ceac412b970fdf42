package handlers

import (
	"context"
	"net/http"
	"time"

	"furnace_tempo"
	"furnace_tempo/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockControl struct {
	err error

	ensureCalls   int
	configCalls   int
	startCalls    int
	resetCalls    int
	beginCalls    int
	endCalls      int
	silenceCalls  int
	lastFurnaceID string
	lastConfig    service.ConfigParams
}

func (m *mockControl) EnsureFleet(ctx context.Context, seeds []service.FurnaceSeed) error {
	m.ensureCalls++
	return m.err
}
func (m *mockControl) UpdateConfig(ctx context.Context, furnaceID string, p service.ConfigParams) error {
	m.configCalls++
	m.lastFurnaceID = furnaceID
	m.lastConfig = p
	return m.err
}
func (m *mockControl) Start(ctx context.Context, furnaceID string) error {
	m.startCalls++
	m.lastFurnaceID = furnaceID
	return m.err
}
func (m *mockControl) Reset(ctx context.Context, furnaceID string) error {
	m.resetCalls++
	m.lastFurnaceID = furnaceID
	return m.err
}
func (m *mockControl) BeginDowntime(ctx context.Context, furnaceID string) error {
	m.beginCalls++
	m.lastFurnaceID = furnaceID
	return m.err
}
func (m *mockControl) EndDowntime(ctx context.Context, furnaceID string) error {
	m.endCalls++
	m.lastFurnaceID = furnaceID
	return m.err
}
func (m *mockControl) SilenceAlarm(ctx context.Context, furnaceID string) error {
	m.silenceCalls++
	m.lastFurnaceID = furnaceID
	return m.err
}

type mockMonitoring struct {
	snapshot service.Snapshot
	fleet    []service.Snapshot
	err      error
}

func (m *mockMonitoring) GetSnapshot(ctx context.Context, furnaceID string) (service.Snapshot, error) {
	return m.snapshot, m.err
}
func (m *mockMonitoring) GetFleet(ctx context.Context) ([]service.Snapshot, error) {
	return m.fleet, m.err
}

type mockJournal struct {
	entries  []furnace_tempo.JournalEntry
	stats    furnace_tempo.FurnaceStats
	listErr  error
	statsErr error
	clearErr error

	lastFilter   service.LogFilter
	lastPassword string
	clearCalls   int
}

func (m *mockJournal) List(ctx context.Context, furnaceID string, f service.LogFilter) ([]furnace_tempo.JournalEntry, error) {
	m.lastFilter = f
	return m.entries, m.listErr
}
func (m *mockJournal) Stats(ctx context.Context, furnaceID string) (furnace_tempo.FurnaceStats, error) {
	return m.stats, m.statsErr
}
func (m *mockJournal) Clear(ctx context.Context, furnaceID, adminPassword string) error {
	m.clearCalls++
	m.lastPassword = adminPassword
	return m.clearErr
}

type mockFleet struct {
	sweepCalls int
	err        error
}

func (m *mockFleet) Sweep(ctx context.Context) error {
	m.sweepCalls++
	return m.err
}

type mockTicker struct{}

func (m *mockTicker) Run(ctx context.Context, tick time.Duration) {}

// ---- Test helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	header := http.Header{}
	header.Add("Authorization", "Bearer "+token)
	return header
}
