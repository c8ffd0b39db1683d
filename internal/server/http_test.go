package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/carddb"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/room"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testCards = `[
  {"品番": "TST-001", "名前": "テストリーダー", "種類": "LEADER",
   "色": "赤", "パワー": "5000", "ライフ": "2"},
  {"品番": "TST-002", "名前": "テストキャラ", "種類": "CHARACTER",
   "色": "赤", "コスト": "1", "パワー": "1000", "カウンター": "1000"}
]`

func testDeck() *carddb.DeckList {
	return &carddb.DeckList{
		Leader: carddb.DeckEntry{Number: "TST-001"},
		Cards:  []carddb.DeckEntry{{Number: "TST-002", Count: 20}},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cards, err := carddb.Parse([]byte(testCards), logger)
	require.NoError(t, err)
	engine := game.NewEngine(logger)
	rooms := room.NewManager(0, logger)
	return New(engine, rooms, cards, nil, logger)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestLobbyToGameFlow(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/rooms", gin.H{
		"name": "casual", "player_id": "alice", "deck": testDeck(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	roomID := decodeBody(t, w)["room_id"].(string)

	w = doJSON(t, router, http.MethodGet, "/api/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["rooms"], 1)

	// guest cannot start a room they have not joined
	w = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/start", gin.H{"player_id": "bob"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/join", gin.H{
		"player_id": "bob", "deck": testDeck(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decodeBody(t, w)["full"])

	w = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/start", gin.H{"player_id": "alice"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	gameID := decodeBody(t, w)["game_id"].(string)
	require.NotEmpty(t, gameID)

	w = doJSON(t, router, http.MethodGet, "/api/games/"+gameID+"?player_id=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view game.GameView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "alice", view.ActivePlayer)
	assert.Equal(t, "alice", view.You.PlayerID)
	assert.Equal(t, 5, view.You.HandCount)

	// acting out of turn is rejected without mutating the game
	w = doJSON(t, router, http.MethodPost, "/api/games/"+gameID+"/actions", gin.H{
		"player_id": "bob", "type": "end_turn",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/games/"+gameID+"/actions", gin.H{
		"player_id": "alice", "type": "end_turn",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 2, view.TurnNumber)
	assert.Equal(t, "bob", view.ActivePlayer)

	// the rejected command must not appear in the log
	w = doJSON(t, router, http.MethodGet, "/api/games/"+gameID+"/log", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logBody struct {
		Log []game.LogEntry `json:"log"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logBody))
	require.Len(t, logBody.Log, 1)
	assert.Equal(t, "turn_ended", logBody.Log[0].Event)
	assert.Equal(t, "alice", logBody.Log[0].PlayerID)
}

func TestPrivateRoomPassword(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/rooms", gin.H{
		"name": "ranked", "player_id": "alice", "password": "hunter2", "deck": testDeck(),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	roomID := decodeBody(t, w)["room_id"].(string)

	w = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/join", gin.H{
		"player_id": "bob", "password": "wrong", "deck": testDeck(),
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/join", gin.H{
		"player_id": "bob", "password": "hunter2", "deck": testDeck(),
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateRoomRejectsUnknownDeckCard(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	deck := testDeck()
	deck.Cards = append(deck.Cards, carddb.DeckEntry{Number: "TST-999", Count: 4})

	w := doJSON(t, router, http.MethodPost, "/api/rooms", gin.H{
		"name": "casual", "player_id": "alice", "deck": deck,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownActionType(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/games/whatever/actions", gin.H{
		"player_id": "alice", "type": "cast_spell",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCardLookup(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodGet, "/api/cards/TST-001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "テストリーダー")

	w = doJSON(t, router, http.MethodGet, "/api/cards/TST-404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMatchesEndpointWithoutRepository(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodGet, "/api/matches", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWebsocketReceivesInitialState(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub().Run(ctx)

	// set up a running game via the API
	w := doJSON(t, router, http.MethodPost, "/api/rooms", gin.H{
		"name": "casual", "player_id": "alice", "deck": testDeck(),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	roomID := decodeBody(t, w)["room_id"].(string)
	w = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/join", gin.H{
		"player_id": "bob", "deck": testDeck(),
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/start", gin.H{"player_id": "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	gameID := decodeBody(t, w)["game_id"].(string)

	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?game_id=" + gameID + "&player_id=bob"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "game_state", msg.Type)
	assert.Equal(t, gameID, msg.GameID)

	// bob's frame must not leak alice's hand
	data, err := json.Marshal(msg.Data)
	require.NoError(t, err)
	var view game.GameView
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, "bob", view.You.PlayerID)
	assert.Empty(t, view.Opponent.Hand)
	assert.Equal(t, 5, view.Opponent.HandCount)
}
