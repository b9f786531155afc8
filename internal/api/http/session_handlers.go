// Package http holds the JSON handlers of the tutor API. Handlers are thin:
// decode, dispatch to the session, encode the new state plus the effects the
// transition emitted.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kinelab/biomech-tutor/internal/auth"
	"github.com/kinelab/biomech-tutor/internal/tutor"
)

// eventResponse is returned by every session event POST.
type eventResponse struct {
	State   tutor.Snapshot `json:"state"`
	Effects []tutor.Effect `json:"effects,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// CreateSessionHandler starts a session and returns its bearer token.
func CreateSessionHandler(reg *tutor.Registry, tokens *auth.TokenService, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := reg.Create()
		tok, err := tokens.IssueSessionToken(s.ID, ttl)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"session_id": s.ID, "token": tok})
	}
}

// sessionFrom resolves the request's session from the token middleware.
func sessionFrom(reg *tutor.Registry, w http.ResponseWriter, r *http.Request) (*tutor.Session, bool) {
	id := auth.SessionIDFromContext(r.Context())
	s, err := reg.Get(id)
	if err != nil {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return nil, false
	}
	return s, true
}

// GetSessionHandler returns the current view snapshot.
func GetSessionHandler(reg *tutor.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFrom(reg, w, r)
		if !ok {
			return
		}
		writeJSON(w, s.Snapshot())
	}
}

// SelectSectionHandler handles a section pick.
func SelectSectionHandler(reg *tutor.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFrom(reg, w, r)
		if !ok {
			return
		}
		var req struct {
			Section string `json:"section"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		effects, err := s.SelectSection(req.Section)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, eventResponse{State: s.Snapshot(), Effects: effects})
	}
}

// SelectQuestionHandler handles a question pick within the current section.
func SelectQuestionHandler(reg *tutor.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFrom(reg, w, r)
		if !ok {
			return
		}
		var req struct {
			MainQuestion string `json:"main_question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		effects, err := s.SelectQuestion(req.MainQuestion)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, eventResponse{State: s.Snapshot(), Effects: effects})
	}
}

// SelectOptionHandler handles an option-card click by displayed position.
// A stale index (late click after the step advanced) is ignored: the reply
// is the unchanged state with no effects.
func SelectOptionHandler(reg *tutor.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFrom(reg, w, r)
		if !ok {
			return
		}
		var req struct {
			DisplayedIndex int `json:"displayed_index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		effects, err := s.SelectOption(req.DisplayedIndex)
		if err != nil {
			if errors.Is(err, tutor.ErrStaleOption) {
				writeJSON(w, eventResponse{State: s.Snapshot()})
				return
			}
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, eventResponse{State: s.Snapshot(), Effects: effects})
	}
}

// SubmitAnswerHandler handles the final numeric+units submission.
func SubmitAnswerHandler(reg *tutor.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFrom(reg, w, r)
		if !ok {
			return
		}
		var req struct {
			Value *float64 `json:"value"`
			Units string   `json:"units"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		effects, err := s.SubmitAnswer(req.Value, req.Units)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, eventResponse{State: s.Snapshot(), Effects: effects})
	}
}
