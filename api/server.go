package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/engine"
	"github.com/satoshi256kbyte/trail-of-thorns-sub014/game/service"
	"github.com/satoshi256kbyte/trail-of-thorns-sub014/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.BattleService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(battleService service.BattleService, hub *websocket.Hub) *Server {
	s := &Server{
		service: battleService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	// Unified sessions for multi-session view (must be before {id} pattern)
	api.HandleFunc("/sessions/unified", s.handleUnifiedSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Battle state and movement queries
	api.HandleFunc("/sessions/{id}/state", s.handleGetBattleState).Methods("GET")
	api.HandleFunc("/sessions/{id}/range", s.handleComputeRange).Methods("GET")
	api.HandleFunc("/sessions/{id}/path", s.handleFindPath).Methods("GET")
	api.HandleFunc("/sessions/{id}/tile", s.handleDescribeTile).Methods("GET")

	// Battle operations
	api.HandleFunc("/sessions/{id}/move", s.handleMoveUnit).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Stages
	api.HandleFunc("/stages", s.handleListStages).Methods("GET")
	api.HandleFunc("/stages", s.handleCreateStage).Methods("POST")
	api.HandleFunc("/stages/{name}", s.handleGetStage).Methods("GET")

	// Health
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// parsePosition reads x/y query parameters into a board position
func parsePosition(r *http.Request) (engine.Position, error) {
	query := r.URL.Query()
	xStr, yStr := query.Get("x"), query.Get("y")
	if xStr == "" || yStr == "" {
		return engine.Position{}, fmt.Errorf("x and y query parameters are required")
	}
	x, err := strconv.Atoi(xStr)
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid x: %s", xStr)
	}
	y, err := strconv.Atoi(yStr)
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid y: %s", yStr)
	}
	return engine.Position{X: x, Y: y}, nil
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StageID   string `json:"stage_id,omitempty"`
		StageName string `json:"stage_name,omitempty"` // Deprecated, use stage_id
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	// Support both parameter names, but prefer stage_id
	stageID := req.StageID
	if stageID == "" && req.StageName != "" {
		stageID = req.StageName
	}

	session, err := s.service.CreateSession(r.Context(), stageID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else { // "accessed"
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj) // desc
	})

	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    len(sessions),
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	err := s.service.DeleteSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Query Handlers

func (s *Server) handleGetBattleState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	state, err := s.service.GetBattleState(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleComputeRange(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	unitID := r.URL.Query().Get("unit")
	if unitID == "" {
		respondError(w, http.StatusBadRequest, "unit query parameter is required")
		return
	}

	result, err := s.service.ComputeRange(r.Context(), sessionID, unitID)
	if err != nil {
		respondError(w, statusForQueryError(err), err.Error())
		return
	}

	// Debug overlay event for connected observers
	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, "range_computed", result)
	}

	fmt.Printf("[RANGE] session=%s unit=%s origin=(%d,%d) budget=%d tiles=%d\n",
		sessionID, unitID, result.Origin.X, result.Origin.Y, result.Budget, result.TileCount)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleFindPath(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	unitID := r.URL.Query().Get("unit")
	if unitID == "" {
		respondError(w, http.StatusBadRequest, "unit query parameter is required")
		return
	}

	goal, err := parsePosition(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.FindPath(r.Context(), sessionID, unitID, goal)
	if err != nil {
		respondError(w, statusForQueryError(err), err.Error())
		return
	}

	// Debug overlay event for connected observers
	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, "path_computed", result)
	}

	status := "FOUND"
	if !result.Found {
		status = result.Reason
	}
	fmt.Printf("[PATH] session=%s unit=%s (%d,%d)->(%d,%d) cost=%d status=%s\n",
		sessionID, unitID, result.Start.X, result.Start.Y, goal.X, goal.Y, result.Cost, status)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDescribeTile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	pos, err := parsePosition(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tile, err := s.service.DescribeTile(r.Context(), sessionID, pos)
	if err != nil {
		respondError(w, statusForQueryError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, tile)
}

// Battle Operation Handlers

func (s *Server) handleMoveUnit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	var req struct {
		UnitID string `json:"unit_id"`
		X      int    `json:"x"`
		Y      int    `json:"y"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UnitID == "" {
		respondError(w, http.StatusBadRequest, "unit_id is required")
		return
	}

	goal := engine.Position{X: req.X, Y: req.Y}
	result, err := s.service.MoveUnit(r.Context(), sessionID, req.UnitID, goal)
	if err != nil {
		respondError(w, statusForQueryError(err), err.Error())
		return
	}

	// Broadcast to WebSocket clients
	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, result.BattleState)
		event := "unit_moved"
		if !result.Success {
			event = "move_blocked"
		}
		s.hub.BroadcastEvent(sessionID, event, result.Outcome)
	}

	// Compact server log for observability
	status := "FAIL"
	if result.Success {
		status = "OK"
	}
	out := result.Outcome
	fmt.Printf("[MOVE] session=%s unit=%s (%d,%d)->(%d,%d) cost=%d reason=%s status=%s\n",
		sessionID, req.UnitID, out.From.X, out.From.Y, goal.X, goal.Y, out.Cost, out.Reason, status)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	// Broadcast to WebSocket clients
	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, state)
		s.hub.BroadcastEvent(sessionID, "reset", nil)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Battle reset successfully",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Stage Handlers

func (s *Server) handleListStages(w http.ResponseWriter, r *http.Request) {
	stages, err := s.service.ListStages(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, stages)
}

func (s *Server) handleGetStage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	stageName := vars["name"]

	// Remove .json extension if present
	stageName = strings.TrimSuffix(stageName, ".json")

	stage, err := s.service.LoadStage(r.Context(), stageName)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, stage)
}

func (s *Server) handleCreateStage(w http.ResponseWriter, r *http.Request) {
	var stage engine.StageConfig

	if err := json.NewDecoder(r.Body).Decode(&stage); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if stage.Name == "" {
		respondError(w, http.StatusBadRequest, "Stage name is required")
		return
	}

	if err := s.service.SaveStage(r.Context(), stage.Name, &stage); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save stage: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Stage saved successfully",
		"stage_id": stage.Name,
	})
}

// Unified Sessions Handler

func (s *Server) handleUnifiedSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var sessions []*service.SessionInfo

	if sessionIDs := query.Get("sessionIds"); sessionIDs != "" {
		// Get specific sessions by IDs
		ids := strings.Split(sessionIDs, ",")
		sessions = make([]*service.SessionInfo, 0, len(ids))
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id != "" {
				session, err := s.service.GetSession(r.Context(), id)
				if err == nil {
					sessions = append(sessions, session)
				}
			}
		}
	} else if stageName := query.Get("stageName"); stageName != "" {
		// Get all sessions on a specific stage
		allSessions, err := s.service.ListSessions(r.Context())
		if err == nil {
			sessions = make([]*service.SessionInfo, 0)
			for _, session := range allSessions {
				if session.StageName == stageName {
					sessions = append(sessions, session)
				}
			}
		}
	} else {
		allSessions, err := s.service.ListSessions(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sessions = allSessions
	}

	stageName := ""
	totalUnits := 0
	if len(sessions) > 0 {
		// Use the stage from the first session
		stageName = sessions[0].StageName
		if sessions[0].StageConfig != nil {
			totalUnits = len(sessions[0].StageConfig.Units)
		}
	}

	response := map[string]interface{}{
		"stage_name":  stageName,
		"total_units": totalUnits,
		"sessions":    make([]map[string]interface{}, 0, len(sessions)),
	}

	for _, session := range sessions {
		sessionData := map[string]interface{}{
			"session_id":    session.ID,
			"stage_name":    session.StageName,
			"battle_state":  session.BattleState,
			"created_at":    session.CreatedAt,
			"last_accessed": session.LastAccessedAt,
		}
		response["sessions"] = append(response["sessions"].([]map[string]interface{}), sessionData)
	}

	respondJSON(w, http.StatusOK, response)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	_, err := s.service.GetSession(context.Background(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// statusForQueryError maps service errors onto HTTP status codes. Contract
// violations (bad coordinates, unknown units or sessions) are client
// errors, not 500s.
func statusForQueryError(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnitNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrOutOfBounds):
		return http.StatusBadRequest
	case strings.Contains(err.Error(), "session not found"):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
