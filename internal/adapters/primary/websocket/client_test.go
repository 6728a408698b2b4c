package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	"github.com/lorrc/performance-dashboard/internal/core/mocks"
	"github.com/lorrc/performance-dashboard/internal/core/services"
)

type wireEvent struct {
	Type    domain.EventType `json:"type"`
	ViewID  string           `json:"viewId"`
	Payload json.RawMessage  `json:"payload"`
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*Hub, string) {
	t.Helper()
	logger := testLogger()

	source := mocks.NewMockMetricsSource()
	source.On("FetchDashboard", mock.Anything, mock.Anything).Return(&domain.Snapshot{
		Summary:      domain.Summary{TotalKPIs: 12, AvgPerformance: 81},
		Distribution: domain.Distribution{Excellent: 3, Good: 5},
	}, nil)
	source.On("FetchPeriodOptions", mock.Anything).Return([]domain.PeriodOption{
		{Key: "fy:2023", Label: "FY 2023/24"},
		{Key: "fy:2024", Label: "FY 2024/25"},
	}, nil)

	lookup := mocks.NewMockRecordLookup()
	lookup.On("SearchActive", mock.Anything, "kcca.directorate", "name").Return([]domain.Record{
		{ID: 1, Name: "Finance"},
	}, nil)

	table := &domain.NavigationTable{Destinations: []domain.Destination{
		{Action: "robust_pmis.action_key_performance_indicator", EntityKey: "search_default_directorate_id"},
	}}
	svc := services.NewDashboardService(source, lookup, table, services.Options{
		RequestTimeout:  time.Second,
		LibraryRetries:  2,
		LibraryInterval: 5 * time.Millisecond,
	}, logger)

	hub := NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		client := NewClient(hub, conn, "7", ClientConfig{}, logger)
		client.Attach(svc.NewView(client))
		if !hub.Register(client) {
			_ = conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType domain.MessageType, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(domain.ClientMessage{Type: msgType, Payload: raw}))
}

// readUntil collects events until stop returns true.
func readUntil(t *testing.T, conn *websocket.Conn, stop func(wireEvent) bool) []wireEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var events []wireEvent
	for {
		var ev wireEvent
		require.NoError(t, conn.ReadJSON(&ev))
		events = append(events, ev)
		if stop(ev) {
			return events
		}
	}
}

func isState(state domain.ViewState) func(wireEvent) bool {
	return func(ev wireEvent) bool {
		if ev.Type != domain.EventState {
			return false
		}
		var p domain.StatePayload
		return json.Unmarshal(ev.Payload, &p) == nil && p.State == state
	}
}

func isType(t domain.EventType) func(wireEvent) bool {
	return func(ev wireEvent) bool { return ev.Type == t }
}

func TestClient_MountRendersDeclaredElements(t *testing.T) {
	_, url := newTestServer(t)
	conn := dial(t, url)

	send(t, conn, domain.MessageMount, domain.MountMessage{
		Elements:     []string{domain.CanvasOverview, domain.CanvasDistrib, domain.ControlPeriod, "total_kpis"},
		LibraryReady: true,
	})
	events := readUntil(t, conn, isState(domain.StateReady))

	var canvases []string
	viewIDs := map[string]struct{}{}
	var periodOptions []domain.Option
	for _, ev := range events {
		viewIDs[ev.ViewID] = struct{}{}
		switch ev.Type {
		case domain.EventChartMount:
			var p domain.ChartRefPayload
			require.NoError(t, json.Unmarshal(ev.Payload, &p))
			canvases = append(canvases, p.Canvas)
		case domain.EventSetOptions:
			var p domain.OptionsPayload
			require.NoError(t, json.Unmarshal(ev.Payload, &p))
			assert.Equal(t, domain.ControlPeriod, p.Element, "undeclared entity control is skipped")
			periodOptions = p.Options
		}
	}

	assert.ElementsMatch(t, []string{domain.CanvasOverview, domain.CanvasDistrib}, canvases)
	require.Len(t, viewIDs, 1)
	for id := range viewIDs {
		assert.NotEmpty(t, id)
	}
	require.Len(t, periodOptions, 3)
	assert.True(t, periodOptions[2].Selected, "latest fiscal year is preselected")
}

func TestClient_LibraryArrivesLate(t *testing.T) {
	_, url := newTestServer(t)
	conn := dial(t, url)

	send(t, conn, domain.MessageMount, domain.MountMessage{Elements: []string{domain.CanvasTrends}})
	events := readUntil(t, conn, isState(domain.StateReady))

	var ready domain.StatePayload
	require.NoError(t, json.Unmarshal(events[len(events)-1].Payload, &ready))
	assert.True(t, ready.Placeholder, "without the chart library the placeholder is shown")

	send(t, conn, domain.MessageLibraryReady, nil)
	send(t, conn, domain.MessageRefresh, nil)
	events = readUntil(t, conn, isType(domain.EventChartMount))
	assert.Equal(t, domain.EventChartMount, events[len(events)-1].Type)
}

func TestClient_PingAndErrors(t *testing.T) {
	_, url := newTestServer(t)
	conn := dial(t, url)

	send(t, conn, domain.MessagePing, nil)
	events := readUntil(t, conn, isType(domain.EventPong))
	assert.Len(t, events, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	events = readUntil(t, conn, isType(domain.EventError))
	assert.Contains(t, string(events[0].Payload), "malformed message")

	send(t, conn, domain.MessageRefresh, nil)
	events = readUntil(t, conn, isType(domain.EventError))
	assert.Contains(t, string(events[0].Payload), "not mounted")

	send(t, conn, "TELEPORT", nil)
	events = readUntil(t, conn, isType(domain.EventError))
	assert.Contains(t, string(events[0].Payload), "unknown message type")
}

func TestClient_CardClickNavigates(t *testing.T) {
	_, url := newTestServer(t)
	conn := dial(t, url)

	send(t, conn, domain.MessageMount, domain.MountMessage{
		Elements:     []string{domain.ControlScope, domain.ControlEntity},
		LibraryReady: true,
		Filters:      &domain.Filters{Scope: domain.ScopeDirectorate, Entity: "1"},
	})
	readUntil(t, conn, isState(domain.StateReady))

	send(t, conn, domain.MessageCardClicked, domain.CardClickedMessage{Action: "robust_pmis.action_key_performance_indicator"})
	events := readUntil(t, conn, isType(domain.EventNavigate))

	var req domain.NavigationRequest
	require.NoError(t, json.Unmarshal(events[len(events)-1].Payload, &req))
	assert.Equal(t, "robust_pmis.action_key_performance_indicator", req.Action)
	assert.EqualValues(t, 1, req.Context["search_default_directorate_id"])

	send(t, conn, domain.MessageCardClicked, domain.CardClickedMessage{Action: "robust_pmis.nowhere"})
	events = readUntil(t, conn, isType(domain.EventError))
	assert.Contains(t, string(events[len(events)-1].Payload), "unknown navigation destination")
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub, url := newTestServer(t)
	conn := dial(t, url)

	send(t, conn, domain.MessageMount, domain.MountMessage{LibraryReady: true})
	readUntil(t, conn, isState(domain.StateReady))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.UserConnections("7"))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestClient_UnmountStopsRendering(t *testing.T) {
	_, url := newTestServer(t)
	conn := dial(t, url)

	send(t, conn, domain.MessageMount, domain.MountMessage{LibraryReady: true})
	readUntil(t, conn, isState(domain.StateReady))

	send(t, conn, domain.MessageUnmount, nil)
	events := readUntil(t, conn, isState(domain.StateUnmounted))

	destroyed := 0
	for _, ev := range events {
		if ev.Type == domain.EventChartDestroy {
			destroyed++
		}
	}
	assert.Equal(t, 9, destroyed, "every live chart is destroyed")

	send(t, conn, domain.MessageResize, nil)
	send(t, conn, domain.MessagePing, nil)
	events = readUntil(t, conn, isType(domain.EventPong))
	assert.Len(t, events, 1, "no chart events after unmount")
}
