package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"huddle/internal/adapter/auth"
	"huddle/internal/adapter/storage"
	"huddle/internal/config"
	"huddle/internal/domain/location"
	locationService "huddle/internal/service/location"
)

type testApp struct {
	router http.Handler
	store  *storage.MemoryStore
	tokens *auth.JWTManager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := storage.NewMemoryStore()
	tokens := auth.NewJWTManager("testsecret", "huddle")
	ingestor := locationService.NewLocationIngestor(store, store, nil, locationService.IngestorConfig{})
	aggregator := locationService.NewGroupAggregator(store, store)

	cfg := config.ServerConfig{CorsOrigins: []string{"*"}, RequestTimeout: 5 * time.Second}

	return &testApp{
		router: NewRouter(cfg, tokens, ingestor, aggregator),
		store:  store,
		tokens: tokens,
	}
}

func (a *testApp) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := a.tokens.GenerateToken(userID, time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)
	return resp
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", resp.Body.String(), err)
	}
	return body.Code
}

func reportBody() map[string]interface{} {
	return map[string]interface{}{
		"latitude":    51.5072,
		"longitude":   -0.1276,
		"accuracy":    20,
		"sampled_at":  "2026-10-14T09:00:00Z",
		"device_info": "iPhone 15",
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/api/health", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestReportLocation(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodPost, "/api/v1/users/u1/location", "u1", reportBody())
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var sample location.Sample
	if err := json.Unmarshal(resp.Body.Bytes(), &sample); err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	if sample.ID == "" || sample.UserID != "u1" || sample.Latitude != 51.5072 {
		t.Fatalf("unexpected sample %+v", sample)
	}
	if sample.Accuracy == nil || *sample.Accuracy != 20 {
		t.Fatalf("expected accuracy 20, got %v", sample.Accuracy)
	}

	if n := len(app.store.Samples()); n != 1 {
		t.Fatalf("expected 1 stored sample, got %d", n)
	}
}

func TestReportLocationErrors(t *testing.T) {
	app := newTestApp(t)
	_ = app.store.SetTrackingEnabled(context.Background(), "off", false)

	missingLatitude := reportBody()
	delete(missingLatitude, "latitude")

	outOfRange := reportBody()
	outOfRange["longitude"] = 190.0

	tests := []struct {
		name   string
		path   string
		caller string
		body   interface{}
		status int
		code   string
	}{
		{"no token", "/api/v1/users/u1/location", "", reportBody(), http.StatusUnauthorized, "unauthenticated"},
		{"other user", "/api/v1/users/u2/location", "u1", reportBody(), http.StatusForbidden, "not_authorized"},
		{"other user with bad body", "/api/v1/users/u2/location", "u1", "{not json", http.StatusForbidden, "not_authorized"},
		{"tracking disabled", "/api/v1/users/off/location", "off", reportBody(), http.StatusForbidden, "tracking_disabled"},
		{"malformed body", "/api/v1/users/u1/location", "u1", "{not json", http.StatusBadRequest, "invalid_request"},
		{"missing latitude", "/api/v1/users/u1/location", "u1", missingLatitude, http.StatusBadRequest, "invalid_report"},
		{"longitude out of range", "/api/v1/users/u1/location", "u1", outOfRange, http.StatusBadRequest, "invalid_report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.do(t, http.MethodPost, tt.path, tt.caller, tt.body)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
			if code := errorCode(t, resp); code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, code)
			}
		})
	}

	if n := len(app.store.Samples()); n != 0 {
		t.Fatalf("expected no stored samples, got %d", n)
	}
}

func TestTrackingPreferenceRoutes(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/api/v1/users/u1/location", "u1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var state map[string]interface{}
	_ = json.Unmarshal(resp.Body.Bytes(), &state)
	if state["tracking_enabled"] != true {
		t.Fatalf("expected tracking enabled by default, got %v", state)
	}

	resp = app.do(t, http.MethodPut, "/api/v1/users/u1/tracking", "u2", map[string]bool{"enabled": false})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another user, got %d", resp.Code)
	}

	resp = app.do(t, http.MethodPut, "/api/v1/users/u1/tracking", "u1", map[string]bool{"enabled": false})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = app.do(t, http.MethodPost, "/api/v1/users/u1/location", "u1", reportBody())
	if resp.Code != http.StatusForbidden || errorCode(t, resp) != "tracking_disabled" {
		t.Fatalf("expected tracking_disabled, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = app.do(t, http.MethodPut, "/api/v1/users/u1/tracking", "u1", map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without enabled flag, got %d", resp.Code)
	}
}

func TestGroupLocations(t *testing.T) {
	app := newTestApp(t)
	app.store.SetGroupMembers("g1", []string{"u1", "u2", "u3"})
	app.store.PutProfile(location.Profile{UserID: "u1", DisplayName: "Una"})

	for _, user := range []string{"u1", "u2", "u1"} {
		resp := app.do(t, http.MethodPost, "/api/v1/users/"+user+"/location", user, reportBody())
		if resp.Code != http.StatusCreated {
			t.Fatalf("report for %s: %d", user, resp.Code)
		}
		// Receive times must differ for a deterministic order
		time.Sleep(2 * time.Millisecond)
	}

	resp := app.do(t, http.MethodGet, "/api/v1/groups/g1/locations", "u3", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var members []location.MemberLocation
	if err := json.Unmarshal(resp.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members) != 2 || members[0].UserID != "u1" || members[1].UserID != "u2" {
		t.Fatalf("unexpected members %+v", members)
	}
	if members[0].DisplayName != "Una" {
		t.Fatalf("expected display name, got %+v", members[0])
	}
}

func TestGroupLocationsEmpty(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/api/v1/groups/nobody/locations", "u1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := bytes.TrimSpace(resp.Body.Bytes()); string(body) != "[]" {
		t.Fatalf("expected empty JSON array, got %s", body)
	}

	resp = app.do(t, http.MethodGet, "/api/v1/groups/nobody/locations", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}
