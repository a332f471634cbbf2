package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trackiq_agent/internal/api"
	"trackiq_agent/internal/capture"
	"trackiq_agent/internal/config"
	"trackiq_agent/internal/device"
	"trackiq_agent/internal/devserver"
	"trackiq_agent/internal/models"
	"trackiq_agent/internal/session"
	"trackiq_agent/internal/store"
	"trackiq_agent/internal/syncer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type agentFixture struct {
	api     *API
	store   *store.LocationStore
	session *session.Store
	router  *gin.Engine
}

// newAgent wires the whole agent stack against a live devserver instance, the
// same topology as a local development run.
func newAgent(t *testing.T) *agentFixture {
	t.Helper()

	backendDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "backend.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open backend db: %v", err)
	}
	backend, err := devserver.New(backendDB, 72*time.Hour)
	if err != nil {
		t.Fatalf("new devserver: %v", err)
	}
	if err := backend.Seed("Dev User", "dev@example.com", "password"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	backendSrv := httptest.NewServer(backend.Router())
	t.Cleanup(backendSrv.Close)

	agentDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "agent.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open agent db: %v", err)
	}
	if err := agentDB.AutoMigrate(&models.LocationSample{}, &models.AuthState{}, &models.Setting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.Config{
		LoginURL:           backendSrv.URL + "/user/userlogin",
		UploadURL:          backendSrv.URL + "/bd/locationTracking/updateUserLocation",
		BatchUploadURL:     backendSrv.URL + "/bd/locationTracking/updateUserLocationBatch",
		WindowStartHour:    0,
		WindowEndHour:      24,
		MovingInterval:     10 * time.Minute,
		StationaryInterval: 30 * time.Minute,
		MovingSpeedMPS:     0.5,
	}

	st := store.New(agentDB)
	sess, err := session.Load(agentDB)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	client := api.NewClient(cfg)
	orch := syncer.New(st, sess, client, device.Collect(agentDB, cfg))
	loop := capture.New(st, orch, cfg)
	orch.SetUnauthorizedHook(loop.Stop)

	handlers := &API{
		Store:         st,
		Session:       sess,
		Syncer:        orch,
		Client:        client,
		Loop:          loop,
		Hub:           NewFeedHub(st),
		StartTracking: func() error { return nil },
		StopTracking:  func() {},
	}

	r := gin.New()
	r.POST("/auth/login", handlers.Login)
	r.POST("/auth/logout", handlers.Logout)
	r.GET("/status", handlers.GetStatus)
	r.GET("/locations", handlers.ListLocations)
	r.GET("/locations/export", handlers.ExportGeoJSON)
	r.POST("/locations/reset", handlers.ResetLocations)
	r.POST("/sync", handlers.SyncNow)
	r.GET("/ws/locations", handlers.HandleLocationFeed)

	return &agentFixture{api: handlers, store: st, session: sess, router: r}
}

func (f *agentFixture) request(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *agentFixture) addSample(t *testing.T, ts int64) uint {
	t.Helper()
	id, err := f.store.Append(&models.LocationSample{Latitude: 12.9, Longitude: 77.5, CapturedAt: ts})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return id
}

func waitForDrain(t *testing.T, st *store.LocationStore) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		pending, err := st.ListPending()
		if err != nil {
			t.Fatalf("list pending: %v", err)
		}
		if len(pending) == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("pending queue never drained")
}

func TestStatusStartsSignedOut(t *testing.T) {
	f := newAgent(t)

	w := f.request(t, http.MethodGet, "/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["signed_in"] != false || body["tracking"] != false {
		t.Fatalf("fresh agent must be signed out and idle: %v", body)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAgent(t)

	w := f.request(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "dev@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
	if f.session.IsSignedIn() {
		t.Fatal("rejected login must not create a session")
	}
}

func TestLoginDrainsBacklog(t *testing.T) {
	f := newAgent(t)

	// Captured while signed out; must upload right after login.
	f.addSample(t, 1000)
	f.addSample(t, 2000)

	w := f.request(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "dev@example.com",
		"password": "password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !f.session.IsSignedIn() {
		t.Fatal("session missing after login")
	}

	waitForDrain(t, f.store)
}

func TestLogoutKeepsSamples(t *testing.T) {
	f := newAgent(t)
	f.addSample(t, 1000)

	w := f.request(t, http.MethodPost, "/auth/logout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	total, _, err := f.store.Counts()
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if total != 1 {
		t.Fatalf("logout must not delete samples, got %d", total)
	}
}

func TestListLocationsNewestFirst(t *testing.T) {
	f := newAgent(t)
	f.addSample(t, 1000)
	f.addSample(t, 3000)
	f.addSample(t, 2000)

	w := f.request(t, http.MethodGet, "/locations", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Data []models.LocationSample `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(body.Data))
	}
	if body.Data[0].CapturedAt != 3000 {
		t.Fatalf("expected newest first, got %d", body.Data[0].CapturedAt)
	}
}

func TestExportGeoJSON(t *testing.T) {
	f := newAgent(t)
	f.addSample(t, 1000)
	f.addSample(t, 2000)

	w := f.request(t, http.MethodGet, "/locations/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/geo+json") {
		t.Fatalf("unexpected content type %q", ct)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("decode geojson: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection: type=%q features=%d", fc.Type, len(fc.Features))
	}
	coords := fc.Features[0].Geometry.Coordinates
	if len(coords) != 2 || coords[0] != 77.5 || coords[1] != 12.9 {
		t.Fatalf("coordinates must be [lon, lat], got %v", coords)
	}
}

func TestResetLocations(t *testing.T) {
	f := newAgent(t)
	f.addSample(t, 1000)

	w := f.request(t, http.MethodPost, "/locations/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	total, _, err := f.store.Counts()
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if total != 0 {
		t.Fatalf("reset left %d rows behind", total)
	}
}

func TestSyncNowReportsPending(t *testing.T) {
	f := newAgent(t)
	f.addSample(t, 1000)

	// Signed out: the drain is a no-op and the sample stays pending.
	w := f.request(t, http.MethodPost, "/sync", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["pending"] != float64(1) {
		t.Fatalf("expected 1 pending, got %v", body["pending"])
	}
}

func TestLocationFeedStreamsAppends(t *testing.T) {
	f := newAgent(t)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/locations"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial feed: %v", err)
	}
	defer conn.Close()

	// Give the hub a beat to register the client before publishing.
	time.Sleep(50 * time.Millisecond)
	id := f.addSample(t, 1000)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg struct {
		Kind   string                 `json:"kind"`
		Sample *models.LocationSample `json:"sample"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read feed event: %v", err)
	}
	if msg.Kind != "append" {
		t.Fatalf("expected append event, got %q", msg.Kind)
	}
	if msg.Sample == nil || msg.Sample.ID != id {
		t.Fatalf("feed event missing sample: %+v", msg)
	}
}
