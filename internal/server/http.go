// Package server exposes the simulator over HTTP and websockets. State
// mutations go through the JSON API; clients watch games over the
// websocket hub.
package server

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/carddb"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/room"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/storage"
)

// Server wires the lobby, engine, card database and optional match
// repository behind a gin router.
type Server struct {
	engine  *game.Engine
	rooms   *room.Manager
	cards   *carddb.Database
	matches *storage.MatchRepository // nil when persistence is disabled
	hub     *Hub
	logger  *zap.Logger

	mu       sync.Mutex
	decks    map[string]map[string]*carddb.DeckList // roomID -> playerID -> deck
	recorded map[string]bool                        // gameIDs already persisted
}

func New(engine *game.Engine, rooms *room.Manager, cards *carddb.Database,
	matches *storage.MatchRepository, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:   engine,
		rooms:    rooms,
		cards:    cards,
		matches:  matches,
		logger:   logger,
		hub:      NewHub(engine, logger),
		decks:    make(map[string]map[string]*carddb.DeckList),
		recorded: make(map[string]bool),
	}
	engine.SetNotificationHandler(s.hub.HandleNotification)
	return s
}

// Hub exposes the websocket hub so cmd/server can run it.
func (s *Server) Hub() *Hub { return s.hub }

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/rooms", s.listRooms)
		api.POST("/rooms", s.createRoom)
		api.POST("/rooms/:id/join", s.joinRoom)
		api.POST("/rooms/:id/leave", s.leaveRoom)
		api.POST("/rooms/:id/start", s.startRoom)

		api.GET("/games/:id", s.gameState)
		api.GET("/games/:id/pending", s.pendingInteraction)
		api.GET("/games/:id/log", s.gameLog)
		api.POST("/games/:id/actions", s.gameAction)

		api.GET("/cards/:number", s.cardLookup)
		api.GET("/matches", s.recentMatches)
	}

	router.GET("/ws", s.serveWS)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func writeError(c *gin.Context, err error) {
	switch {
	case game.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case err == room.ErrRoomNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err == room.ErrWrongPassword:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case err == room.ErrRoomFull, err == room.ErrRoomLimit,
		err == room.ErrAlreadySeated, err == room.ErrRoomNotWaiting:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// --- lobby ---

type createRoomRequest struct {
	Name     string          `json:"name" binding:"required"`
	PlayerID string          `json:"player_id" binding:"required"`
	Password string          `json:"password"`
	Deck     *carddb.DeckList `json:"deck" binding:"required"`
}

func (s *Server) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": s.rooms.List()})
}

func (s *Server) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.validateDeck(req.Deck); err != nil {
		writeError(c, err)
		return
	}

	r, err := s.rooms.Create(req.Name, req.PlayerID, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	s.mu.Lock()
	s.decks[r.ID] = map[string]*carddb.DeckList{req.PlayerID: req.Deck}
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"room_id": r.ID})
}

type joinRoomRequest struct {
	PlayerID string          `json:"player_id" binding:"required"`
	Password string          `json:"password"`
	Deck     *carddb.DeckList `json:"deck" binding:"required"`
}

func (s *Server) joinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.validateDeck(req.Deck); err != nil {
		writeError(c, err)
		return
	}

	r, err := s.rooms.Join(c.Param("id"), req.PlayerID, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	s.mu.Lock()
	if s.decks[r.ID] == nil {
		s.decks[r.ID] = make(map[string]*carddb.DeckList)
	}
	s.decks[r.ID][req.PlayerID] = req.Deck
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"room_id": r.ID, "full": r.Full()})
}

type leaveRoomRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

func (s *Server) leaveRoom(c *gin.Context) {
	var req leaveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	roomID := c.Param("id")
	if err := s.rooms.Leave(roomID, req.PlayerID); err != nil {
		writeError(c, err)
		return
	}

	s.mu.Lock()
	if seats := s.decks[roomID]; seats != nil {
		delete(seats, req.PlayerID)
		if len(seats) == 0 {
			delete(s.decks, roomID)
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"room_id": roomID})
}

type startRoomRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

// startRoom materializes both decks and hands the room to the engine.
// Only the host can start, and the host takes the first turn.
func (s *Server) startRoom(c *gin.Context) {
	var req startRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	roomID := c.Param("id")

	r, err := s.rooms.Get(roomID)
	if err != nil {
		writeError(c, err)
		return
	}
	if r.HostID != req.PlayerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can start the game"})
		return
	}

	s.mu.Lock()
	seats := s.decks[roomID]
	hostDeck, guestDeck := seats[r.HostID], seats[r.GuestID]
	s.mu.Unlock()
	if hostDeck == nil || guestDeck == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "both players must submit a deck"})
		return
	}

	hostLeader, hostCards, err := s.cards.Materialize(hostDeck, r.HostID)
	if err != nil {
		writeError(c, err)
		return
	}
	guestLeader, guestCards, err := s.cards.Materialize(guestDeck, r.GuestID)
	if err != nil {
		writeError(c, err)
		return
	}

	gameID := uuid.NewString()
	p1 := game.NewPlayer(r.HostID, hostLeader, hostCards)
	p2 := game.NewPlayer(r.GuestID, guestLeader, guestCards)
	if _, err := s.engine.CreateGame(gameID, p1, p2); err != nil {
		writeError(c, err)
		return
	}
	if err := s.engine.StartGame(gameID, r.HostID); err != nil {
		s.engine.RemoveGame(gameID)
		writeError(c, err)
		return
	}
	if _, err := s.rooms.MarkStarted(roomID, gameID); err != nil {
		s.engine.RemoveGame(gameID)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"room_id": roomID, "game_id": gameID})
}

func (s *Server) validateDeck(list *carddb.DeckList) error {
	// materialize for a throwaway owner to surface unknown cards early
	_, _, err := s.cards.Materialize(list, "deck-check")
	return err
}

// --- games ---

func (s *Server) gameState(c *gin.Context) {
	view, err := s.engine.GameView(c.Param("id"), c.Query("player_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) pendingInteraction(c *gin.Context) {
	ia, err := s.engine.PendingInteraction(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if ia == nil {
		c.JSON(http.StatusOK, gin.H{"interaction": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"interaction": ia.View()})
}

func (s *Server) gameLog(c *gin.Context) {
	entries, err := s.engine.GameLog(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": entries})
}

type actionRequest struct {
	PlayerID     string   `json:"player_id" binding:"required"`
	Type         string   `json:"type" binding:"required"`
	CardUUID     string   `json:"card_uuid"`
	TargetUUID   string   `json:"target_uuid"`
	DonIDs       []string `json:"don_ids"`
	Count        int      `json:"count"`
	AbilityIndex int      `json:"ability_index"`
	SelectedIDs  []string `json:"selected_ids"`
	ChoiceIndex  *int     `json:"choice_index"`
}

func (s *Server) gameAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	gameID := c.Param("id")

	var err error
	switch req.Type {
	case "play_card":
		err = s.engine.PlayCard(gameID, req.PlayerID, req.CardUUID, req.DonIDs)
	case "attach_don":
		err = s.engine.AttachDon(gameID, req.PlayerID, req.CardUUID, req.Count)
	case "activate_ability":
		err = s.engine.ActivateAbility(gameID, req.PlayerID, req.CardUUID, req.AbilityIndex)
	case "declare_attack":
		err = s.engine.DeclareAttack(gameID, req.PlayerID, req.CardUUID, req.TargetUUID)
	case "resolve_block":
		err = s.engine.ResolveBlock(gameID, req.PlayerID, req.CardUUID)
	case "apply_counter":
		err = s.engine.ApplyCounter(gameID, req.PlayerID, req.CardUUID, req.DonIDs)
	case "end_turn":
		err = s.engine.EndTurn(gameID, req.PlayerID)
	case "resolve_interaction":
		err = s.engine.ResolveInteraction(gameID, req.PlayerID, req.SelectedIDs, req.ChoiceIndex)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action type: " + req.Type})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	view, err := s.engine.GameView(gameID, req.PlayerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if view.Winner != "" {
		s.finishGame(c.Request.Context(), gameID, view)
	}
	c.JSON(http.StatusOK, view)
}

// finishGame records the result once per game.
func (s *Server) finishGame(ctx context.Context, gameID string, view *game.GameView) {
	s.mu.Lock()
	done := s.recorded[gameID]
	s.recorded[gameID] = true
	s.mu.Unlock()
	if done {
		return
	}

	s.logger.Info("game finished",
		zap.String("game_id", gameID),
		zap.String("winner", view.Winner),
		zap.Int("turns", view.TurnNumber),
	)
	if s.matches == nil {
		return
	}
	rec := storage.MatchRecord{
		GameID:    gameID,
		PlayerOne: view.You.PlayerID,
		PlayerTwo: view.Opponent.PlayerID,
		Winner:    view.Winner,
		Turns:     view.TurnNumber,
	}
	if err := s.matches.RecordMatch(ctx, rec); err != nil {
		s.logger.Error("record match", zap.Error(err), zap.String("game_id", gameID))
	}
}

// --- cards / matches ---

func (s *Server) cardLookup(c *gin.Context) {
	master, err := s.cards.Get(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, master)
}

func (s *Server) recentMatches(c *gin.Context) {
	if s.matches == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "match history is not enabled"})
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := s.matches.RecentMatches(c.Request.Context(), c.Query("player_id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": records})
}

// --- websocket ---

func (s *Server) serveWS(c *gin.Context) {
	gameID := c.Query("game_id")
	playerID := c.Query("player_id")
	if gameID == "" || playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "game_id and player_id are required"})
		return
	}
	if _, err := s.engine.GameView(gameID, playerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.hub.ServeWS(c.Writer, c.Request, gameID, playerID)
}
