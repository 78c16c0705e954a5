package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/simfleet-core/internal/capture"
	"github.com/nerrad567/simfleet-core/internal/infrastructure/config"
	"github.com/nerrad567/simfleet-core/internal/infrastructure/logging"
	"github.com/nerrad567/simfleet-core/internal/lifecycle"
	"github.com/nerrad567/simfleet-core/internal/simctl"
)

// fakeControl is an in-memory simctl.Client backing the API under test.
type fakeControl struct {
	mu      sync.Mutex
	devices map[string]simctl.Device

	listErr error
	bootErr error
}

func newFakeControl(devices ...simctl.Device) *fakeControl {
	m := make(map[string]simctl.Device, len(devices))
	for _, d := range devices {
		m[d.UDID] = d
	}
	return &fakeControl{devices: m}
}

func (f *fakeControl) List(_ context.Context) ([]simctl.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]simctl.Device, 0, len(f.devices))
	for _, d := range f.devices {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeControl) Boot(_ context.Context, udid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bootErr != nil {
		return f.bootErr
	}
	d := f.devices[udid]
	d.State = simctl.StateBooted
	f.devices[udid] = d
	return nil
}

func (f *fakeControl) Shutdown(_ context.Context, udid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.devices[udid]
	d.State = simctl.StateShutdown
	f.devices[udid] = d
	return nil
}

func (f *fakeControl) Install(context.Context, string, string) error { return nil }

func (f *fakeControl) Launch(context.Context, string, string, []string) error { return nil }

func (f *fakeControl) Screenshot(context.Context, string, string) error { return nil }

func (f *fakeControl) Tap(context.Context, string, int, int) error { return nil }

func (f *fakeControl) TypeText(context.Context, string, string) error { return nil }

// testServer creates a Server backed by a fake control client and a real
// supervisor.
func testServer(t *testing.T, devices ...simctl.Device) (*Server, *fakeControl) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	control := newFakeControl(devices...)
	supervisor := lifecycle.NewSupervisor(ctx, lifecycle.SupervisorConfig{
		Control:      control,
		PollInterval: time.Hour, // keep reconciliation out of the way
	})

	captures := capture.NewManager(ctx, capture.Config{
		EncoderBinary: "/bin/false",
		WindowBinary:  "/bin/false",
		FrameDir:      t.TempDir(),
	}, supervisor)

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Security: config.SecurityConfig{
			JWT: config.JWTConfig{
				Secret:         "test-secret-key-at-least-32-characters-long",
				AccessTokenTTL: 15,
			},
		},
		Logger:     log,
		Supervisor: supervisor,
		Control:    control,
		Captures:   captures,
		Version:    "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Initialise hub for tests
	srv.hub = NewHub(srv.wsCfg, log)
	go srv.hub.Run(ctx)

	return srv, control
}

// authToken logs in through the router and returns a bearer token.
func authToken(t *testing.T, router http.Handler) string {
	t.Helper()

	body := `{"username": "admin", "password": "admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d; body: %s", w.Code, w.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}
	return resp.AccessToken
}

func authedRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+authToken(t, router))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
}

func TestRequestID_Generated(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("ACAO = %q, want %q", got, "http://localhost:3000")
	}
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestProtectedRoute_RejectsBadToken(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLogin_Success(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	body := `{"username": "admin", "password": "admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.AccessToken == "" {
		t.Error("expected access_token to be non-empty")
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("token_type = %q, want Bearer", resp.TokenType)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	body := `{"username": "admin", "password": "wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestWSTicket_SingleUse(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodPost, "/api/v1/auth/ws-ticket", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	ticket, ok := resp["ticket"].(string)
	if !ok || ticket == "" {
		t.Fatal("expected ticket to be a non-empty string")
	}

	entry, ok := srv.validateTicket(ticket)
	if !ok {
		t.Error("ticket should be valid on first use")
	}
	if entry.subject != "admin" {
		t.Errorf("ticket subject = %q, want admin", entry.subject)
	}

	if _, ok := srv.validateTicket(ticket); ok {
		t.Error("ticket should not be valid on second use")
	}
}

func TestWSTicket_Expiry(t *testing.T) {
	srv, _ := testServer(t)

	ticket := generateTicket()
	srv.tickets.mu.Lock()
	srv.tickets.tickets[ticket] = ticketEntry{
		expiresAt: time.Now().Add(-1 * time.Second),
	}
	srv.tickets.mu.Unlock()

	if _, ok := srv.validateTicket(ticket); ok {
		t.Error("expired ticket should not be valid")
	}
}

func TestListDevices(t *testing.T) {
	srv, _ := testServer(t,
		simctl.Device{UDID: "dev-1", Name: "Phone A", State: simctl.StateShutdown},
		simctl.Device{UDID: "dev-2", Name: "Phone B", State: simctl.StateBooted},
	)
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodGet, "/api/v1/devices", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if int(resp["count"].(float64)) != 2 {
		t.Errorf("count = %v, want 2", resp["count"])
	}
}

func TestGetDevice_NotFound(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodGet, "/api/v1/devices/nonexistent", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestBootDevice(t *testing.T) {
	srv, control := testServer(t,
		simctl.Device{UDID: "dev-1", Name: "Phone A", State: simctl.StateShutdown},
	)
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodPost, "/api/v1/devices/dev-1/boot", "")
	if w.Code != http.StatusOK {
		t.Fatalf("boot status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var snap lifecycle.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.State != simctl.StateBooted {
		t.Errorf("state = %q, want %q", snap.State, simctl.StateBooted)
	}

	control.mu.Lock()
	got := control.devices["dev-1"].State
	control.mu.Unlock()
	if got != simctl.StateBooted {
		t.Errorf("external state = %q, want %q", got, simctl.StateBooted)
	}
}

func TestBootDevice_CommandFailure(t *testing.T) {
	srv, control := testServer(t,
		simctl.Device{UDID: "dev-1", Name: "Phone A", State: simctl.StateShutdown},
	)
	control.bootErr = &simctl.CommandError{Op: "boot", UDID: "dev-1", ExitCode: 1, Output: "boot refused"}
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodPost, "/api/v1/devices/dev-1/boot", "")
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusBadGateway, w.Body.String())
	}

	var resp Error
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != ErrCodeUpstream {
		t.Errorf("error code = %q, want %q", resp.Code, ErrCodeUpstream)
	}
}

func TestShutdownDevice(t *testing.T) {
	srv, _ := testServer(t,
		simctl.Device{UDID: "dev-1", Name: "Phone A", State: simctl.StateBooted},
	)
	router := srv.buildRouter()

	// Resolve the actor first so shutdown has something to stop.
	if w := authedRequest(t, router, http.MethodGet, "/api/v1/devices/dev-1", ""); w.Code != http.StatusOK {
		t.Fatalf("resolve status = %d; body: %s", w.Code, w.Body.String())
	}

	w := authedRequest(t, router, http.MethodPost, "/api/v1/devices/dev-1/shutdown", "")
	if w.Code != http.StatusOK {
		t.Fatalf("shutdown status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	if len(srv.supervisor.ListActive()) != 0 {
		t.Error("expected no active actors after shutdown")
	}
}

func TestShutdownDevice_NotTracked(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodPost, "/api/v1/devices/unknown/shutdown", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestInstallApp_Validation(t *testing.T) {
	srv, _ := testServer(t,
		simctl.Device{UDID: "dev-1", State: simctl.StateBooted},
	)
	router := srv.buildRouter()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing path", `{}`, http.StatusBadRequest},
		{"invalid JSON", `not json`, http.StatusBadRequest},
		{"valid", `{"path": "/tmp/app.ipa"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := authedRequest(t, router, http.MethodPost, "/api/v1/devices/dev-1/install", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestLaunchApp_Validation(t *testing.T) {
	srv, _ := testServer(t,
		simctl.Device{UDID: "dev-1", State: simctl.StateBooted},
	)
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodPost, "/api/v1/devices/dev-1/launch", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing bundle_id status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = authedRequest(t, router, http.MethodPost, "/api/v1/devices/dev-1/launch", `{"bundle_id": "com.example.app"}`)
	if w.Code != http.StatusOK {
		t.Errorf("launch status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestTapDevice_RejectsNegativeCoordinates(t *testing.T) {
	srv, _ := testServer(t,
		simctl.Device{UDID: "dev-1", State: simctl.StateBooted},
	)
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodPost, "/api/v1/devices/dev-1/tap", `{"x": -5, "y": 10}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestDeviceHistory_NotConfigured(t *testing.T) {
	srv, _ := testServer(t,
		simctl.Device{UDID: "dev-1", State: simctl.StateBooted},
	)
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodGet, "/api/v1/devices/dev-1/history", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListActive(t *testing.T) {
	srv, _ := testServer(t,
		simctl.Device{UDID: "dev-1", Name: "Phone A", State: simctl.StateBooted},
	)
	router := srv.buildRouter()

	// Nothing tracked until a device is resolved.
	w := authedRequest(t, router, http.MethodGet, "/api/v1/devices/active", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if int(resp["count"].(float64)) != 0 {
		t.Errorf("count = %v, want 0", resp["count"])
	}

	if w := authedRequest(t, router, http.MethodGet, "/api/v1/devices/dev-1", ""); w.Code != http.StatusOK {
		t.Fatalf("resolve status = %d", w.Code)
	}

	w = authedRequest(t, router, http.MethodGet, "/api/v1/devices/active", "")
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if int(resp["count"].(float64)) != 1 {
		t.Errorf("count after resolve = %v, want 1", resp["count"])
	}
}

func TestListCaptures_Empty(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodGet, "/api/v1/captures", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if int(resp["count"].(float64)) != 0 {
		t.Errorf("count = %v, want 0", resp["count"])
	}
}

func TestGetCapture_NotFound(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodGet, "/api/v1/captures/nonexistent", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestStartCapture_Validation(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	tests := []struct {
		name string
		body string
	}{
		{"missing udid", `{"dest": "/tmp/out.mp4"}`},
		{"missing dest", `{"udid": "dev-1"}`},
		{"fps too high", `{"udid": "dev-1", "dest": "/tmp/out.mp4", "fps": 120}`},
		{"negative duration", `{"udid": "dev-1", "dest": "/tmp/out.mp4", "max_duration_seconds": -1}`},
		{"invalid JSON", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := authedRequest(t, router, http.MethodPost, "/api/v1/captures", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusBadRequest, w.Body.String())
			}
		})
	}
}

func TestWindowCapture_Validation(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := authedRequest(t, router, http.MethodPost, "/api/v1/captures/window", `{"udid": "dev-1", "dest": "/tmp/out.mp4"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing duration status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHub_BroadcastToSubscribed(t *testing.T) {
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: map[string]struct{}{ChannelDeviceState: {}},
	}
	hub.Register(client)

	hub.Broadcast(ChannelDeviceState, map[string]any{"udid": "dev-1", "to": "Booted"})

	select {
	case msg := <-client.send:
		var wsMsg WSMessage
		if err := json.Unmarshal(msg, &wsMsg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if wsMsg.EventType != ChannelDeviceState {
			t.Errorf("event_type = %q, want %q", wsMsg.EventType, ChannelDeviceState)
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for broadcast message")
	}
}

func TestHub_NoMessageForUnsubscribed(t *testing.T) {
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: map[string]struct{}{ChannelCaptureStart: {}},
	}
	hub.Register(client)

	hub.Broadcast(ChannelDeviceState, map[string]any{"udid": "dev-1"})

	select {
	case <-client.send:
		t.Error("unsubscribed client should not receive message")
	case <-time.After(100 * time.Millisecond):
		// OK, nothing delivered
	}
}

func TestHub_ClientCount(t *testing.T) {
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	if hub.ClientCount() != 0 {
		t.Errorf("initial client count = %d, want 0", hub.ClientCount())
	}

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	hub.Register(client)

	if hub.ClientCount() != 1 {
		t.Errorf("after register count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("after unregister count = %d, want 0", hub.ClientCount())
	}
}
