package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"furnace_tempo/internal/service"

	"github.com/gin-gonic/gin"
)

func newMockedService() (*service.Service, *mockControl, *mockMonitoring, *mockJournal) {
	control := &mockControl{}
	monitoring := &mockMonitoring{snapshot: service.Snapshot{}}
	journal := &mockJournal{}
	svc := &service.Service{
		Control:       control,
		Monitoring:    monitoring,
		Journal:       journal,
		Fleet:         &mockFleet{},
		Ticker:        &mockTicker{},
		Authorization: &mockAuth{parseID: 1},
	}
	return svc, control, monitoring, journal
}

func doRequest(router *gin.Engine, method, path string, body []byte, header http.Header) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if header != nil {
		req.Header = header
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth_NoAuthRequired(t *testing.T) {
	svc, _, _, _ := newMockedService()
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestFurnaceRoutes_RequireAuth(t *testing.T) {
	svc, control, _, _ := newMockedService()
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/v1/furnaces/rp2/start", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if control.startCalls != 0 {
		t.Fatalf("unauthorized request reached the service")
	}
}

func TestStartProcess_OK(t *testing.T) {
	svc, control, _, _ := newMockedService()
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/v1/furnaces/rp2/start", nil, authHeader("t"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if control.startCalls != 1 || control.lastFurnaceID != "rp2" {
		t.Fatalf("start not forwarded: calls=%d id=%s", control.startCalls, control.lastFurnaceID)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp["status"] != "started" || resp["furnace_id"] != "rp2" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestControlErrors_MapToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unknown furnace", service.ErrUnknownFurnace, http.StatusNotFound},
		{"incomplete config", service.ErrConfigIncomplete, http.StatusBadRequest},
		{"process active", service.ErrProcessActive, http.StatusConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, control, _, _ := newMockedService()
			control.err = tc.err
			router := newTestRouter(svc)

			w := doRequest(router, http.MethodPost, "/api/v1/furnaces/rp2/start", nil, authHeader("t"))
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantCode)
			}
		})
	}
}

func TestUpdateConfig_ForwardsEdits(t *testing.T) {
	svc, control, _, _ := newMockedService()
	router := newTestRouter(svc)

	body := []byte(`{"sheet_length_mm": 5000, "card_number": "K-1042"}`)
	w := doRequest(router, http.MethodPatch, "/api/v1/furnaces/rp2/config", body, authHeader("t"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if control.configCalls != 1 {
		t.Fatalf("config calls = %d, want 1", control.configCalls)
	}
	p := control.lastConfig
	if p.SheetLengthMM == nil || *p.SheetLengthMM != 5000 {
		t.Fatalf("sheet length not forwarded: %+v", p)
	}
	if p.CardNumber == nil || *p.CardNumber != "K-1042" {
		t.Fatalf("card number not forwarded: %+v", p)
	}
	if p.SheetThicknessMM != nil || p.SheetsPerBatch != nil {
		t.Fatalf("absent fields must stay nil: %+v", p)
	}
}

func TestUpdateConfig_BadBody(t *testing.T) {
	svc, control, _, _ := newMockedService()
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodPatch, "/api/v1/furnaces/rp2/config", []byte(`{"sheet_length_mm": "wide"}`), authHeader("t"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if control.configCalls != 0 {
		t.Fatalf("malformed body reached the service")
	}
}

func TestResetFurnace_RequiresConfirmation(t *testing.T) {
	svc, control, _, _ := newMockedService()
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/v1/furnaces/rp2/reset", []byte(`{}`), authHeader("t"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status without confirm = %d, want 400", w.Code)
	}
	if control.resetCalls != 0 {
		t.Fatalf("unconfirmed reset reached the service")
	}

	w = doRequest(router, http.MethodPost, "/api/v1/furnaces/rp2/reset", []byte(`{"confirm": true}`), authHeader("t"))
	if w.Code != http.StatusOK {
		t.Fatalf("status with confirm = %d, want 200", w.Code)
	}
	if control.resetCalls != 1 {
		t.Fatalf("reset calls = %d, want 1", control.resetCalls)
	}
}

func TestDowntimeEndpoints(t *testing.T) {
	svc, control, _, _ := newMockedService()
	router := newTestRouter(svc)

	for _, tc := range []struct {
		path  string
		calls *int
	}{
		{"/api/v1/furnaces/rp2/downtime/start", &control.beginCalls},
		{"/api/v1/furnaces/rp2/downtime/end", &control.endCalls},
		{"/api/v1/furnaces/rp2/alarm/silence", &control.silenceCalls},
	} {
		w := doRequest(router, http.MethodPost, tc.path, nil, authHeader("t"))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", tc.path, w.Code)
		}
		if *tc.calls != 1 {
			t.Fatalf("%s: calls = %d, want 1", tc.path, *tc.calls)
		}
	}
}

func TestGetFleet_OK(t *testing.T) {
	svc, _, monitoring, _ := newMockedService()
	monitoring.fleet = []service.Snapshot{{}, {}, {}}
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/v1/furnaces", nil, authHeader("t"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Count != 3 {
		t.Fatalf("count = %d, want 3", resp.Count)
	}
}

func TestGetSnapshot_UnknownFurnace(t *testing.T) {
	svc, _, monitoring, _ := newMockedService()
	monitoring.err = service.ErrUnknownFurnace
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/v1/furnaces/rp9", nil, authHeader("t"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
