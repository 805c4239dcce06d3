package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gigflow/internal/domain/event"
	"github.com/ignatzorin/gigflow/internal/logger"
)

func init() {
	logger.Silence()
}

// startHub поднимает хаб и тестовый сервер, который подключает клиента
// с идентификатором из query-параметра user.
func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.URL.Query().Get("user"))
		if err != nil {
			http.Error(w, "bad user", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, hub, userID)
		hub.Register(client)
		client.Run(context.Background())
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func TestHub_DeliverHiredToEveryConnectionOfRecipient(t *testing.T) {
	hub, srv := startHub(t)
	winner := uuid.New()

	first := dial(t, srv, winner)
	second := dial(t, srv, winner)
	require.Eventually(t, func() bool { return hub.Connections(winner) == 2 }, 2*time.Second, 10*time.Millisecond)

	ev := event.NewHired(uuid.New(), "Логотип для пекарни", uuid.New())
	require.NoError(t, hub.Deliver(context.Background(), winner, ev))

	for _, conn := range []*websocket.Conn{first, second} {
		env := readEnvelope(t, conn)
		assert.Equal(t, event.TypeHired, env.Type)

		var data event.Hired
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, ev.GigID, data.GigID)
		assert.Equal(t, ev.BidID, data.BidID)
		assert.Equal(t, "Логотип для пекарни", data.GigTitle)
		assert.Contains(t, data.Message, "Логотип для пекарни")
	}
}

func TestHub_DeliverToAbsentRecipientIsNotAnError(t *testing.T) {
	hub, _ := startHub(t)
	err := hub.Deliver(context.Background(), uuid.New(), event.NewHired(uuid.New(), "Перевод статьи", uuid.New()))
	assert.NoError(t, err)
}

func TestHub_OtherUsersDoNotReceiveEvent(t *testing.T) {
	hub, srv := startHub(t)
	winner, bystander := uuid.New(), uuid.New()

	winnerConn := dial(t, srv, winner)
	bystanderConn := dial(t, srv, bystander)
	require.Eventually(t, func() bool {
		return hub.Connections(winner) == 1 && hub.Connections(bystander) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Deliver(context.Background(), winner, event.NewHired(uuid.New(), "Сайт-визитка", uuid.New())))
	assert.Equal(t, event.TypeHired, readEnvelope(t, winnerConn).Type)

	require.NoError(t, bystanderConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := bystanderConn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, srv := startHub(t)
	user := uuid.New()

	conn := dial(t, srv, user)
	require.Eventually(t, func() bool { return hub.Connections(user) == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Connections(user) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_DeliverAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	// Буфер может принять сообщение и после остановки, поэтому заполняем его.
	var err error
	for i := 0; i < 100 && err == nil; i++ {
		err = hub.Deliver(context.Background(), uuid.New(), event.NewHired(uuid.New(), "Заказ", uuid.New()))
	}
	assert.Error(t, err)
}
