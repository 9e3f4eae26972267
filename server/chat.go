package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/planwise/planwise/agent/brain"
	"github.com/planwise/planwise/plugin/markdown"
	"github.com/planwise/planwise/store"
)

// ChatRequest is the POST /api/v1/chat body. An empty SessionID starts a
// new session.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// ChatResponse wraps the agent message with the session routing data the
// client needs for the next turn.
type ChatResponse struct {
	SessionID string              `json:"sessionId"`
	State     string              `json:"state"`
	Message   *brain.AgentMessage `json:"message"`
	HTML      string              `json:"html,omitempty"`
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if req.SessionID == "" {
		req.SessionID = shortuuid.New()
	}

	entry := s.entry(req.SessionID)

	// One turn at a time per session; the brain is not safe for
	// concurrent use.
	if err := entry.sem.Acquire(c.Request().Context(), 1); err != nil {
		return echo.NewHTTPError(http.StatusRequestTimeout, "session busy")
	}
	defer entry.sem.Release(1)

	started := time.Now()
	msg := entry.brain.ProcessInput(req.Message)
	state := string(entry.brain.State())
	s.exporter.RecordTurn(state, time.Since(started), true)

	s.persistSession(c, req.SessionID, entry)

	resp := ChatResponse{
		SessionID: req.SessionID,
		State:     state,
		Message:   msg,
	}
	if c.QueryParam("format") == "html" {
		html, err := markdown.RenderHTML(msg.Content)
		if err != nil {
			slog.Warn("markdown render failed", "session", req.SessionID, "error", err)
		} else {
			resp.HTML = html
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// persistSession snapshots the session into the store. Persistence failures
// are logged, never surfaced to the user.
func (s *Server) persistSession(c echo.Context, sessionID string, entry *sessionEntry) {
	if s.store == nil {
		return
	}

	sctx := s.sessions.GetContext(sessionID)
	contextJSON, err := json.Marshal(sctx)
	if err != nil {
		slog.Error("failed to marshal session context", "session", sessionID, "error", err)
		return
	}

	createdTs := time.Now().Unix()
	if len(sctx.History) > 0 {
		createdTs = sctx.History[0].Timestamp.Unix()
	}
	record := &store.SessionRecord{
		ID:        sessionID,
		State:     string(entry.brain.State()),
		Context:   string(contextJSON),
		CreatedTs: createdTs,
		UpdatedTs: time.Now().Unix(),
	}
	if p := entry.brain.Plan(); p != nil {
		planJSON, err := json.Marshal(p)
		if err != nil {
			slog.Error("failed to marshal media plan", "session", sessionID, "error", err)
		} else {
			planStr := string(planJSON)
			record.MediaPlan = &planStr
		}
	}

	if _, err := s.store.UpsertSessionRecord(c.Request().Context(), record); err != nil {
		slog.Error("failed to persist session", "session", sessionID, "error", err)
	}
}

func (s *Server) handleHistory(c echo.Context) error {
	sessionID := c.Param("id")
	sctx := s.sessions.GetContext(sessionID)
	return c.JSON(http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"history":   sctx.History,
	})
}

func (s *Server) handleSessionInfo(c echo.Context) error {
	sessionID := c.Param("id")
	sctx := s.sessions.GetContext(sessionID)

	info := map[string]any{
		"sessionId":        sessionID,
		"interactionCount": sctx.UserProfile.InteractionCount,
		"expertiseLevel":   sctx.UserProfile.ExpertiseLevel,
		"state":            string(brain.StateInit),
	}
	s.mu.Lock()
	if entry, ok := s.entries[sessionID]; ok {
		info["state"] = string(entry.brain.State())
		if p := entry.brain.Plan(); p != nil {
			info["mediaPlan"] = p
		}
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleSessionDelete(c echo.Context) error {
	sessionID := c.Param("id")
	s.sessions.Reset(sessionID)
	s.dropEntry(sessionID)
	if s.store != nil {
		if err := s.store.DeleteSessionRecord(c.Request().Context(), &store.DeleteSessionRecord{ID: sessionID}); err != nil {
			slog.Error("failed to delete persisted session", "session", sessionID, "error", err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}
