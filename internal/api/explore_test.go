package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/batchmates/batchmates/internal/api"
	"github.com/batchmates/batchmates/internal/models"
	"github.com/batchmates/batchmates/internal/ws"
)

const testSessionID = "6f1c1e8e-3d7b-4d55-9d0a-0b8f8f1e2a11"

func newExploreRouter(svc api.ExploreService, hub *ws.Hub) *gin.Engine {
	h := api.NewExploreHandler(svc, hub, []string{"http://localhost:3000"}, testLogger())

	r := gin.New()
	r.POST("/explore/sessions", h.Create)
	r.GET("/explore/sessions/:sid", h.Get)
	r.POST("/explore/sessions/:sid/expand", h.Expand)
	r.POST("/explore/sessions/:sid/reset", h.Reset)
	r.DELETE("/explore/sessions/:sid", h.Delete)
	r.GET("/explore/sessions/:sid/ws", h.Stream(context.Background()))

	return r
}

func sessionWith(nodes ...models.Node) *models.Session {
	g := models.EmptyGraph()
	g.Nodes = append(g.Nodes, nodes...)

	return &models.Session{ID: testSessionID, Graph: g, CreatedAt: time.Now()}
}

func TestExploreCreate_EmptyBody(t *testing.T) {
	t.Parallel()

	var gotReq models.SeedRequest
	svc := &mockExploreService{
		createFn: func(_ context.Context, req models.SeedRequest) (*models.Session, error) {
			gotReq = req

			return sessionWith(), nil
		},
	}

	w := doRequest(newExploreRouter(svc, nil), http.MethodPost, "/explore/sessions", "")
	assertStatus(t, w, http.StatusCreated)

	if gotReq != (models.SeedRequest{}) {
		t.Errorf("expected zero seed, got %+v", gotReq)
	}

	var sess models.Session
	if err := json.Unmarshal(w.Body.Bytes(), &sess); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if sess.ID != testSessionID || sess.Graph.Nodes == nil {
		t.Errorf("unexpected session %+v", sess)
	}
}

func TestExploreCreate_Seeded(t *testing.T) {
	t.Parallel()

	svc := &mockExploreService{
		createFn: func(_ context.Context, req models.SeedRequest) (*models.Session, error) {
			return sessionWith(models.Node{ID: req.ID, Kind: req.Kind}), nil
		},
	}

	w := doRequest(newExploreRouter(svc, nil), http.MethodPost, "/explore/sessions", `{"id":"Alice","kind":"person"}`)
	assertStatus(t, w, http.StatusCreated)
}

func TestExploreCreate_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed", body: `{"id":`, want: http.StatusBadRequest},
		{name: "bad kind", body: `{"id":"Alice","kind":"robot"}`, want: http.StatusBadRequest},
		{name: "id and all", body: `{"id":"Alice","kind":"person","all":true}`, want: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := doRequest(newExploreRouter(&mockExploreService{}, nil), http.MethodPost, "/explore/sessions", tc.body)
			assertStatus(t, w, tc.want)
		})
	}
}

func TestExploreExpand_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "missing session", err: models.ErrSessionNotFound, wantCode: http.StatusNotFound},
		{name: "missing node", err: fmt.Errorf("expanding: %w", models.ErrNodeNotFound), wantCode: http.StatusNotFound},
		{name: "kind mismatch", err: fmt.Errorf("expanding: %w", models.ErrKindMismatch), wantCode: http.StatusBadRequest},
		{name: "stale", err: models.ErrStaleSession, wantCode: http.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockExploreService{
				expandFn: func(context.Context, string, models.ExpandRequest) (*models.ExpandResult, error) {
					return nil, tc.err
				},
			}

			w := doRequest(newExploreRouter(svc, nil), http.MethodPost, "/explore/sessions/"+testSessionID+"/expand", `{"id":"Alice","kind":"person"}`)
			assertStatus(t, w, tc.wantCode)
		})
	}
}

func TestExploreExpand_OK(t *testing.T) {
	t.Parallel()

	svc := &mockExploreService{
		expandFn: func(_ context.Context, sid string, req models.ExpandRequest) (*models.ExpandResult, error) {
			if sid != testSessionID || req.ID != "Alice" {
				t.Errorf("sid = %q req = %+v", sid, req)
			}

			g := models.EmptyGraph()

			return &models.ExpandResult{Graph: g, Added: g}, nil
		},
	}

	w := doRequest(newExploreRouter(svc, nil), http.MethodPost, "/explore/sessions/"+testSessionID+"/expand", `{"id":"Alice","kind":"person"}`)
	assertStatus(t, w, http.StatusOK)
}

func TestExploreExpand_MissingID(t *testing.T) {
	t.Parallel()

	w := doRequest(newExploreRouter(&mockExploreService{}, nil), http.MethodPost, "/explore/sessions/"+testSessionID+"/expand", `{"kind":"person"}`)
	assertStatus(t, w, http.StatusBadRequest)

	if body := decodeError(t, w); body.Code != api.ErrCodeValidationError {
		t.Errorf("code = %q", body.Code)
	}
}

func TestExploreResetAndDelete(t *testing.T) {
	t.Parallel()

	deleted := false
	svc := &mockExploreService{
		resetFn: func(context.Context, string) (*models.Session, error) { return sessionWith(), nil },
		deleteFn: func(_ context.Context, sid string) error {
			if deleted {
				return models.ErrSessionNotFound
			}
			deleted = true

			return nil
		},
	}
	r := newExploreRouter(svc, nil)

	assertStatus(t, doRequest(r, http.MethodPost, "/explore/sessions/"+testSessionID+"/reset", ""), http.StatusOK)

	w := doRequest(r, http.MethodDelete, "/explore/sessions/"+testSessionID, "")
	assertStatus(t, w, http.StatusOK)

	if !strings.Contains(w.Body.String(), `"deleted":true`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}

	assertStatus(t, doRequest(r, http.MethodDelete, "/explore/sessions/"+testSessionID, ""), http.StatusNotFound)
}

func TestExploreStream_UnknownSession(t *testing.T) {
	t.Parallel()

	svc := &mockExploreService{
		getFn: func(context.Context, string) (*models.Session, error) { return nil, models.ErrSessionNotFound },
	}

	w := doRequest(newExploreRouter(svc, nil), http.MethodGet, "/explore/sessions/"+testSessionID+"/ws", "")
	assertStatus(t, w, http.StatusNotFound)
}

func TestExploreStream_SendsSnapshotFirst(t *testing.T) {
	t.Parallel()

	svc := &mockExploreService{
		getFn: func(context.Context, string) (*models.Session, error) {
			return sessionWith(models.Node{ID: "Alice", Kind: models.KindPerson}), nil
		},
	}

	hub := ws.NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(newExploreRouter(svc, hub))
	defer srv.Close()

	dialCtx, dialCancel := context.WithTimeout(ctx, 5*time.Second)
	defer dialCancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/explore/sessions/" + testSessionID + "/ws"
	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow() //nolint:errcheck // test teardown

	_, msg, err := conn.Read(dialCtx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var evt ws.Event
	if err := json.Unmarshal(msg, &evt); err != nil {
		t.Fatalf("invalid event: %v", err)
	}

	if evt.Type != ws.EventGraphUpdated || evt.SessionID != testSessionID {
		t.Fatalf("unexpected event %+v", evt)
	}

	hub.PublishGraph(testSessionID, models.EmptyGraph())

	_, msg, err = conn.Read(dialCtx)
	if err != nil {
		t.Fatalf("read update: %v", err)
	}

	if err := json.Unmarshal(msg, &evt); err != nil || evt.ID != 1 {
		t.Errorf("expected update with id 1, got %+v (err=%v)", evt, err)
	}
}
