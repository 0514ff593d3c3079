package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/juiceshop/findit/internal/findit"
	"github.com/juiceshop/findit/internal/reviews"
	"github.com/juiceshop/findit/internal/snippets"
	"github.com/juiceshop/findit/internal/store"
	"github.com/juiceshop/findit/internal/verdict"
)

type errorResponse struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error"`
}

type verdictRequest struct {
	Key           string            `json:"key"`
	SelectedLines verdict.Selection `json:"selectedLines"`
}

type reviewRequest struct {
	Message string `json:"message"`
	Author  string `json:"author"`
}

func (s *Server) handleListSnippets(w http.ResponseWriter, r *http.Request) {
	keys, err := s.findIt.Keys(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"challenges": keys})
}

func (s *Server) handleGetSnippet(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("challenge")
	c, err := s.findIt.Snippet(r.Context(), key)
	if err != nil {
		s.writeChallengeError(w, r, key, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snippet": c.Snippet})
}

func (s *Server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	var req verdictRequest
	if err := decodeBody(r, verdictSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.findIt.CheckVulnLines(r.Context(), req.Key, req.SelectedLines)
	if err != nil {
		s.writeChallengeError(w, r, req.Key, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeBody(r, reviewSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, _ := s.users.From(r)
	review, err := s.reviews.Create(r.Context(), user, r.PathValue("id"), req.Message, req.Author)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "success", "review": review})
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	list, err := s.reviews.List(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Review{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": list})
}

// writeChallengeError reports a missing challenge with its key and defers
// everything else to writeError.
func (s *Server) writeChallengeError(w http.ResponseWriter, r *http.Request, key string, err error) {
	if errors.Is(err, findit.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Status: "error",
			Error:  "No code challenge for challenge key: " + key,
		})
		return
	}
	s.writeError(w, r, err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *ErrInvalidRequest
	switch {
	case errors.As(err, &invalid), errors.Is(err, reviews.ErrInvalidReview):
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Error: err.Error()})
	case errors.Is(err, reviews.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Unauthorized"})
	case snippets.IsBrokenBoundary(err):
		s.log.Error("broken snippet boundaries", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Status: "error", Error: err.Error()})
	default:
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
