package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rsmishra/nivesh/internal/services/chat"
)

// handleChat handles POST /api/chat - one conversational turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := s.app.ChatService.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrNotConfigured) {
			WriteError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Chat error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleChatReset handles POST /api/chat/reset - clear a session's history.
func (s *Server) handleChatReset(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		WriteError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	if err := s.app.ChatService.ResetSession(r.Context(), req.SessionID); err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Reset failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "session_id": req.SessionID})
}

// handleChatSessions handles /api/chat/sessions - list or create sessions.
func (s *Server) handleChatSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessions, err := s.app.ChatService.ListSessions(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing sessions: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
	case http.MethodPost:
		session, err := s.app.ChatService.CreateSession(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error creating session: %v", err))
			return
		}
		WriteJSON(w, http.StatusCreated, session)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeChatSessions dispatches /api/chat/sessions/{id} to get or delete.
func (s *Server) routeChatSessions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/chat/sessions/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		session, err := s.app.ChatService.GetSession(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Session not found: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, session)
	case http.MethodDelete:
		if err := s.app.ChatService.DeleteSession(r.Context(), id); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Delete failed: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "session_id": id})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}
