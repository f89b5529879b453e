package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calldeck/backend/internal/clients/daily"
	"github.com/calldeck/backend/internal/data/repos/metrics"
	"github.com/calldeck/backend/internal/data/repos/testutil"
	"github.com/calldeck/backend/internal/domain"
	"github.com/calldeck/backend/internal/http/handlers"
	"github.com/calldeck/backend/internal/http/response"
)

// testEnv wires a real router against an in-memory store and a fake remote
// rooms API.
type testEnv struct {
	engine  *gin.Engine
	samples metrics.SampleRepo
	remote  *fakeRemote
}

// fakeRemote stands in for the rooms API and records what it was asked.
type fakeRemote struct {
	srv           *httptest.Server
	deletedRooms  []string
	modifiedRooms []string
	failAll       bool
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	f := &fakeRemote{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.failAll {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"server-error","info":"remote exploded"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		name := strings.TrimPrefix(r.URL.Path, "/rooms/")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/rooms":
			_, _ = w.Write([]byte(`{"total_count":2,"data":[{"name":"room-a"},{"name":"room-b"}]}`))
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"id":"id-` + name + `","name":"` + name + `","url":"https://x.daily.co/` + name + `"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/rooms":
			body := map[string]interface{}{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			created, _ := json.Marshal(body)
			_, _ = w.Write(created)
		case r.Method == http.MethodPost:
			f.modifiedRooms = append(f.modifiedRooms, name)
			_, _ = w.Write([]byte(`{"name":"` + name + `","privacy":"private"}`))
		case r.Method == http.MethodDelete:
			f.deletedRooms = append(f.deletedRooms, name)
			_, _ = w.Write([]byte(`{"id":"id-` + name + `","name":"` + name + `","deleted":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := testutil.Logger(t)
	db := testutil.DB(t)
	remote := newFakeRemote(t)

	roomsClient := daily.New(log, daily.Config{
		Token:   "test-token",
		BaseURL: remote.srv.URL,
		Timeout: 2 * time.Second,
	})
	sampleRepo := metrics.NewSampleRepo(db, log)

	engine := NewRouter(RouterConfig{
		Log:           log,
		HealthHandler: handlers.NewHealthHandler(),
		RoomHandler:   handlers.NewRoomHandler(log, roomsClient, sampleRepo),
		MetricHandler: handlers.NewMetricHandler(log, sampleRepo),
	})

	return &testEnv{engine: engine, samples: sampleRepo, remote: remote}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func TestHealthcheck(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/healthcheck", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestIngestThenListRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/metrics",
		`{"room_name":"r1","session_id":"s1","timestamp":1000,"send_bps":0,"recv_bps":0,"send_packet_loss":0,"recv_packet_loss":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/metrics/r1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var rows []domain.MetricSample
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "r1", rows[0].RoomName)
	assert.Equal(t, "s1", rows[0].SessionID)
	assert.Equal(t, int64(1000), rows[0].Timestamp)
}

func TestIngestRejectsIncompletePayload(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/metrics", `{"room_name":"r1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.StatusCode)
	// timestamp is the field checked right after room_name.
	assert.Contains(t, body.Message, "metrics missing required field: timestamp")

	w = env.do(t, http.MethodGet, "/api/metrics/r1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String(), "a rejected ingest must persist nothing")
}

func TestIngestDropsUnknownFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/metrics",
		`{"room_name":"r1","session_id":"s1","timestamp":1,"send_bps":1,"recv_bps":1,"send_packet_loss":0,"recv_packet_loss":0,"sneaky_column":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/metrics/r1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "sneaky_column")
}

func TestListOrdersByTimestampAscending(t *testing.T) {
	env := newTestEnv(t)

	for _, ts := range []string{"3000", "1000", "2000"} {
		w := env.do(t, http.MethodPost, "/api/metrics",
			`{"room_name":"r1","session_id":"s1","timestamp":`+ts+`,"send_bps":0,"recv_bps":0,"send_packet_loss":0,"recv_packet_loss":0}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/metrics/r1", "")
	var rows []domain.MetricSample
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, int64(1000), rows[0].Timestamp)
	assert.Equal(t, int64(2000), rows[1].Timestamp)
	assert.Equal(t, int64(3000), rows[2].Timestamp)
}

func TestDeleteMetricsIsScopedToRoom(t *testing.T) {
	env := newTestEnv(t)

	for _, seed := range []struct{ room, ts string }{
		{"r1", "1000"}, {"r1", "2000"}, {"r2", "1500"},
	} {
		w := env.do(t, http.MethodPost, "/api/metrics",
			`{"room_name":"`+seed.room+`","session_id":"s1","timestamp":`+seed.ts+`,"send_bps":0,"recv_bps":0,"send_packet_loss":0,"recv_packet_loss":0}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(t, http.MethodDelete, "/api/metrics/r1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/metrics/r1", "")
	assert.JSONEq(t, "[]", w.Body.String())

	w = env.do(t, http.MethodGet, "/api/metrics/r2", "")
	var rows []domain.MetricSample
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)
}

func TestGetRoomProxiesRemote(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/rooms/room-a", "")
	require.Equal(t, http.StatusOK, w.Code)

	var room domain.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))
	assert.Equal(t, "room-a", room.Name)
	assert.Equal(t, "https://x.daily.co/room-a", room.URL)
}

func TestListRoomsUnwrapsEnvelope(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusOK, w.Code)

	var rooms []domain.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 2)
	assert.Equal(t, "room-a", rooms[0].Name)
}

func TestCreateRoomProxiesBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/rooms", `{"name":"room-new"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var room domain.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))
	assert.Equal(t, "room-new", room.Name)
}

func TestModifyRoomProxiesRemote(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/rooms/room-a", `{"privacy":"private"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"room-a"}, env.remote.modifiedRooms)
}

func TestDeleteRoomCascadesToMetrics(t *testing.T) {
	env := newTestEnv(t)

	for _, room := range []string{"room-a", "room-a", "room-b"} {
		w := env.do(t, http.MethodPost, "/api/metrics",
			`{"room_name":"`+room+`","session_id":"s1","timestamp":1000,"send_bps":0,"recv_bps":0,"send_packet_loss":0,"recv_packet_loss":0}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(t, http.MethodDelete, "/api/rooms/room-a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"room-a"}, env.remote.deletedRooms)

	var payload struct {
		Room           domain.DeletedRoom `json:"room"`
		MetricsRemoved int64              `json:"metrics_removed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.True(t, payload.Room.Deleted)
	assert.Equal(t, int64(2), payload.MetricsRemoved)

	w = env.do(t, http.MethodGet, "/api/metrics/room-a", "")
	assert.JSONEq(t, "[]", w.Body.String())
	w = env.do(t, http.MethodGet, "/api/metrics/room-b", "")
	var rows []domain.MetricSample
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)
}

func TestRemoteFailureSurfacesAsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.remote.failAll = true

	w := env.do(t, http.MethodGet, "/api/rooms/room-a", "")
	require.Equal(t, http.StatusBadGateway, w.Code)

	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadGateway, body.StatusCode)
	assert.Contains(t, body.Message, "remote exploded")
}

func TestRoomDeletionSurvivesMetricsCleanupFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	remote := newFakeRemote(t)

	roomsClient := daily.New(log, daily.Config{
		Token:   "test-token",
		BaseURL: remote.srv.URL,
		Timeout: 2 * time.Second,
	})
	engine := NewRouter(RouterConfig{
		Log:         log,
		RoomHandler: handlers.NewRoomHandler(log, roomsClient, failingSampleRepo{}),
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/rooms/room-a", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	// Room deletion succeeded remotely; cleanup failure is reported, not hidden
	// and not converted into a request failure.
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"room-a"}, remote.deletedRooms)
	assert.Contains(t, w.Body.String(), `"metrics_cleanup":"failed"`)
}

type failingSampleRepo struct{}

func (failingSampleRepo) Create(ctx context.Context, in *domain.SampleInput) (*domain.MetricSample, error) {
	return nil, errStoreDown
}

func (failingSampleRepo) List(ctx context.Context, filter domain.SampleFilter, order *domain.SampleOrder) ([]domain.MetricSample, error) {
	return nil, errStoreDown
}

func (failingSampleRepo) DeleteBy(ctx context.Context, filter domain.SampleFilter) (int64, error) {
	return 0, errStoreDown
}

var errStoreDown = errors.New("metrics store unavailable")
