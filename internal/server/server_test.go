package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"crypto-alert-bot/internal/auth"
	"crypto-alert-bot/internal/events"
	"crypto-alert-bot/internal/exchange"
	"crypto-alert-bot/internal/strategy"
)

type stubBotAPI struct {
	open   []exchange.Position
	closed []exchange.Position
	stats  exchange.Stats
}

func (s *stubBotAPI) Status() StatusInfo {
	return StatusInfo{Running: true, Symbols: []string{"BTCUSDT"}, Intervals: []string{"15m"}}
}
func (s *stubBotAPI) OpenPositions() []exchange.Position   { return s.open }
func (s *stubBotAPI) ClosedPositions() []exchange.Position { return s.closed }
func (s *stubBotAPI) Stats() exchange.Stats                 { return s.stats }

func testPosition(id int64) exchange.Position {
	p := exchange.NewPosition("BTCUSDT", "15m", "Hammer Candle", &strategy.Signal{
		Entry: 100, StopLoss: 90, TakeProfit: 110, Direction: strategy.Long,
	})
	p.ID = id
	return *p
}

func newTestServer(cfg Config, api BotAPI) *Server {
	return NewServer(cfg, api, events.NewBus(), zerolog.Nop())
}

func doRequest(s *Server, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(Config{}, &stubBotAPI{})

	w := doRequest(s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("Health should answer 200, got %d", w.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(Config{}, &stubBotAPI{})

	w := doRequest(s, http.MethodGet, "/api/v1/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Status should answer 200, got %d", w.Code)
	}

	var status StatusInfo
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("Status payload should be JSON: %v", err)
	}
	if !status.Running || len(status.Symbols) != 1 {
		t.Errorf("Status should reflect the bot, got %+v", status)
	}
}

func TestPositionsEndpoints(t *testing.T) {
	api := &stubBotAPI{
		open:   []exchange.Position{testPosition(1), testPosition(2)},
		closed: []exchange.Position{testPosition(3)},
	}
	s := newTestServer(Config{}, api)

	w := doRequest(s, http.MethodGet, "/api/v1/positions", "")
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 {
		t.Errorf("Open positions count should be 2, got %d", body.Count)
	}

	w = doRequest(s, http.MethodGet, "/api/v1/positions/history", "")
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 {
		t.Errorf("Closed positions count should be 1, got %d", body.Count)
	}
}

func TestAuthRequiredWhenEnabled(t *testing.T) {
	cfg := Config{AuthEnabled: true, JWTSecret: "test-secret"}
	s := newTestServer(cfg, &stubBotAPI{})

	if w := doRequest(s, http.MethodGet, "/api/v1/status", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("Missing token should answer 401, got %d", w.Code)
	}
	if w := doRequest(s, http.MethodGet, "/api/v1/status", "garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("Invalid token should answer 401, got %d", w.Code)
	}

	token, err := auth.NewJWTManager("test-secret", time.Hour).GenerateToken("operator")
	if err != nil {
		t.Fatal(err)
	}
	if w := doRequest(s, http.MethodGet, "/api/v1/status", token); w.Code != http.StatusOK {
		t.Errorf("Valid token should answer 200, got %d", w.Code)
	}

	// Health stays public
	if w := doRequest(s, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("Health should stay public, got %d", w.Code)
	}
}

func TestEventLogRing(t *testing.T) {
	log := newEventLog(3)
	for i := 0; i < 5; i++ {
		log.add(events.Event{ID: fmt.Sprintf("%d", i)})
	}

	got := log.list()
	if len(got) != 3 {
		t.Fatalf("Ring should cap at capacity, got %d", len(got))
	}
	if got[0].ID != "2" || got[2].ID != "4" {
		t.Errorf("Ring should keep the newest events oldest first, got %v %v", got[0].ID, got[2].ID)
	}
}

func TestEventLogPartial(t *testing.T) {
	log := newEventLog(10)
	log.add(events.Event{ID: "a"})
	log.add(events.Event{ID: "b"})

	got := log.list()
	if len(got) != 2 || got[0].ID != "a" {
		t.Errorf("Partial ring should return inserts in order, got %v", got)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(Config{}, &stubBotAPI{})

	w := doRequest(s, http.MethodGet, "/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Every response should carry a request id")
	}
}
