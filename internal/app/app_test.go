package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gigflow/internal/app"
	"github.com/ignatzorin/gigflow/internal/config"
	"github.com/ignatzorin/gigflow/internal/logger"
	"github.com/ignatzorin/gigflow/internal/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Silence()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	server *app.Server
	hub    *ws.Hub
}

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		StorageDriver:   config.StorageDriverMemory,
		JWTSecret:       "test-secret-test-secret-test-secret",
		AccessTokenTTL:  time.Hour,
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitLimit:  1000,
		RateLimitPeriod: time.Minute,
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := app.NewServer(testConfig(), app.NewMemoryStorage(), hub, hub)
	return &testServer{t: t, server: server, hub: hub}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.server.Engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

type registered struct {
	ID    uuid.UUID
	Token string
}

func (s *testServer) register(name string) registered {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    strings.ToLower(uuid.NewString()[:8]) + "@example.com",
		"password": "password123",
	})
	require.Equal(s.t, http.StatusCreated, code)

	var auth struct {
		User struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
		AccessToken string `json:"accessToken"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &auth))
	return registered{ID: auth.User.ID, Token: auth.AccessToken}
}

type gigView struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Budget     int64      `json:"budget"`
	OwnerID    uuid.UUID  `json:"ownerId"`
	Status     string     `json:"status"`
	AssignedTo *uuid.UUID `json:"assignedTo"`
	Owner      *struct {
		Name string `json:"name"`
	} `json:"owner"`
}

type bidView struct {
	ID       uuid.UUID `json:"id"`
	GigID    uuid.UUID `json:"gigId"`
	BidderID uuid.UUID `json:"bidderId"`
	Status   string    `json:"status"`
	Price    int64     `json:"price"`
	Gig      *struct {
		Title  string `json:"title"`
		Status string `json:"status"`
	} `json:"gig"`
	Bidder *struct {
		Name string `json:"name"`
	} `json:"bidder"`
}

func (s *testServer) createGig(token, title string) gigView {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/gigs", token, map[string]interface{}{
		"title":       title,
		"description": "Подробное описание задачи для исполнителя",
		"budget":      5000,
	})
	require.Equal(s.t, http.StatusCreated, code)
	var gig gigView
	require.NoError(s.t, json.Unmarshal(env.Data, &gig))
	return gig
}

func (s *testServer) submitBid(token string, gigID uuid.UUID, price int64) (int, envelope) {
	s.t.Helper()
	return s.do(http.MethodPost, "/api/bids", token, map[string]interface{}{
		"gigId":   gigID,
		"message": "Готов взяться за работу сегодня",
		"price":   price,
	})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.server.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage":"memory"`)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Анна", "email": "anna@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)

	code, env = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Анна", "email": "ANNA@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "email_taken", env.Error.Reason)

	code, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "anna@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, code)
	var auth struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))

	code, env = s.do(http.MethodGet, "/api/auth/me", auth.AccessToken, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "anna@example.com")

	code, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "anna@example.com", "password": "wrong-pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/gigs"},
		{http.MethodGet, "/api/gigs/my/posted"},
		{http.MethodPost, "/api/bids"},
		{http.MethodGet, "/api/bids/my/bids"},
		{http.MethodPatch, "/api/bids/" + uuid.NewString() + "/hire"},
	}
	for _, r := range routes {
		code, _ := s.do(r.method, r.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, "%s %s", r.method, r.path)
	}

	code, _ := s.do(http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestInvalidIDs(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("Заказчик")

	code, env := s.do(http.MethodGet, "/api/gigs/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, _ = s.do(http.MethodPatch, "/api/bids/not-a-uuid/hire", owner.Token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/bids", owner.Token, map[string]interface{}{
		"gigId": "nope", "message": "Готов взяться за работу", "price": 10,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodGet, "/api/gigs/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestGigCRUD(t *testing.T) {
	s := newTestServer(t)
	owner, other := s.register("Заказчик"), s.register("Другой")

	gig := s.createGig(owner.Token, "Логотип кофейни")
	assert.Equal(t, "open", gig.Status)
	assert.Equal(t, owner.ID, gig.OwnerID)
	require.NotNil(t, gig.Owner)
	assert.Equal(t, "Заказчик", gig.Owner.Name)
	s.createGig(other.Token, "Сайт для пекарни")

	code, env := s.do(http.MethodGet, "/api/gigs?search="+url.QueryEscape("ЛОГОТИП"), "", nil)
	require.Equal(t, http.StatusOK, code)
	var found []gigView
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, gig.ID, found[0].ID)

	code, env = s.do(http.MethodGet, "/api/gigs/my/posted", owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []gigView
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 1)

	code, env = s.do(http.MethodPut, "/api/gigs/"+gig.ID.String(), other.Token, map[string]interface{}{"budget": 1})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "not_owner", env.Error.Reason)

	code, env = s.do(http.MethodPut, "/api/gigs/"+gig.ID.String(), owner.Token, map[string]interface{}{"budget": 9000})
	require.Equal(t, http.StatusOK, code)
	var updated gigView
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, int64(9000), updated.Budget)
	assert.Equal(t, "Логотип кофейни", updated.Title)

	code, _ = s.do(http.MethodPost, "/api/gigs", owner.Token, map[string]interface{}{
		"title": "Лого", "description": "коротко", "budget": 0,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodDelete, "/api/gigs/"+gig.ID.String(), owner.Token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "заказ успешно удалён")

	code, _ = s.do(http.MethodGet, "/api/gigs/"+gig.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBidLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner, u2, u3, u4 := s.register("Заказчик"), s.register("Второй"), s.register("Третий"), s.register("Четвёртый")
	gig := s.createGig(owner.Token, "Логотип кофейни")

	code, env := s.submitBid(owner.Token, gig.ID, 100)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "self_bid", env.Error.Reason)

	code, env = s.submitBid(u2.Token, gig.ID, 4000)
	require.Equal(t, http.StatusCreated, code)
	var b2 bidView
	require.NoError(t, json.Unmarshal(env.Data, &b2))
	assert.Equal(t, "pending", b2.Status)

	code, env = s.submitBid(u2.Token, gig.ID, 3900)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "duplicate_bid", env.Error.Reason)

	code, env = s.submitBid(u3.Token, gig.ID, 4500)
	require.Equal(t, http.StatusCreated, code)
	var b3 bidView
	require.NoError(t, json.Unmarshal(env.Data, &b3))

	code, env = s.do(http.MethodGet, "/api/bids/"+gig.ID.String(), u2.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "not_owner", env.Error.Reason)

	code, env = s.do(http.MethodGet, "/api/bids/"+gig.ID.String(), owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var listed []bidView
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 2)
	require.NotNil(t, listed[0].Bidder)

	code, env = s.do(http.MethodPatch, "/api/bids/"+b2.ID.String()+"/hire", u3.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "not_owner", env.Error.Reason)

	code, env = s.do(http.MethodPatch, "/api/bids/"+b2.ID.String()+"/hire", owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var hired struct {
		Message string  `json:"message"`
		Bid     bidView `json:"bid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &hired))
	assert.Equal(t, "Исполнитель успешно выбран", hired.Message)
	assert.Equal(t, "hired", hired.Bid.Status)

	code, env = s.do(http.MethodPatch, "/api/bids/"+b3.ID.String()+"/hire", owner.Token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already_assigned", env.Error.Reason)

	code, env = s.submitBid(u4.Token, gig.ID, 100)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "gig_closed", env.Error.Reason)

	code, env = s.do(http.MethodGet, "/api/bids/my/bids", u3.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []bidView
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "rejected", mine[0].Status)
	require.NotNil(t, mine[0].Gig)
	assert.Equal(t, "assigned", mine[0].Gig.Status)

	code, env = s.do(http.MethodGet, "/api/gigs/"+gig.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, code)
	var assigned gigView
	require.NoError(t, json.Unmarshal(env.Data, &assigned))
	assert.Equal(t, "assigned", assigned.Status)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, u2.ID, *assigned.AssignedTo)

	code, env = s.do(http.MethodDelete, "/api/gigs/"+gig.ID.String(), owner.Token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "gig_closed", env.Error.Reason)
}

func TestHiredNotificationOverWebSocket(t *testing.T) {
	s := newTestServer(t)
	owner, worker := s.register("Заказчик"), s.register("Исполнитель")
	gig := s.createGig(owner.Token, "Логотип кофейни")

	code, env := s.submitBid(worker.Token, gig.ID, 4000)
	require.Equal(t, http.StatusCreated, code)
	var b bidView
	require.NoError(t, json.Unmarshal(env.Data, &b))

	srv := httptest.NewServer(s.server.Engine)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=" + worker.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.Connections(worker.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	code, _ = s.do(http.MethodPatch, "/api/bids/"+b.ID.String()+"/hire", owner.Token, nil)
	require.Equal(t, http.StatusOK, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg struct {
		Type string `json:"type"`
		Data struct {
			Message  string    `json:"message"`
			GigID    uuid.UUID `json:"gigId"`
			GigTitle string    `json:"gigTitle"`
			BidID    uuid.UUID `json:"bidId"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "hired", msg.Type)
	assert.Equal(t, gig.ID, msg.Data.GigID)
	assert.Equal(t, b.ID, msg.Data.BidID)
	assert.Equal(t, "Логотип кофейни", msg.Data.GigTitle)

	_, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", nil)
	assert.Error(t, err)
}
