package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
)

// LoginRequest carries the API password
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the signed API token
type LoginResponse struct {
	Token string `json:"token"`
}

// ChatRequest is a question about indexed content
type ChatRequest struct {
	Question  string `json:"question"`
	TopK      int    `json:"top_k,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}

// IndexRequest queues a channel for indexing
type IndexRequest struct {
	ChannelHandle string `json:"channel_handle"`
	MaxVideos     int    `json:"max_videos,omitempty"`
	Clear         bool   `json:"clear,omitempty"`
}

// IndexAccepted is returned when an indexing task is queued
type IndexAccepted struct {
	TaskID        string `json:"task_id"`
	ChannelHandle string `json:"channel_handle"`
	Status        string `json:"status"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Pinger{
		"store": s.store,
		"queue": s.queue,
	}
	for name, p := range checks {
		if p == nil {
			continue
		}
		if err := p.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "backend", name, "error", err)
			writeError(w, http.StatusServiceUnavailable, name+" unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.authService.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// Chat endpoint

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := domain.DefaultAskOptions()
	if req.TopK > 0 {
		opts.TopK = req.TopK
	}
	opts.ChannelID = req.ChannelID

	result, err := s.chatService.Ask(r.Context(), req.Question, opts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "question is required")
		case errors.Is(err, domain.ErrServiceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "ai services are not configured")
		default:
			s.logger.Error("chat failed", "error", err)
			writeError(w, http.StatusInternalServerError, "chat failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Index endpoints

func (s *Server) handleIndexChannel(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChannelHandle == "" {
		writeError(w, http.StatusBadRequest, "channel_handle is required")
		return
	}

	opts := domain.DefaultIndexOptions()
	if req.MaxVideos > 0 {
		opts.MaxVideos = req.MaxVideos
	}
	opts.Clear = req.Clear

	task := domain.NewIndexChannelTask(req.ChannelHandle, opts)
	if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
		s.logger.Error("failed to enqueue indexing task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to queue indexing task")
		return
	}

	writeJSON(w, http.StatusAccepted, IndexAccepted{
		TaskID:        task.ID,
		ChannelHandle: req.ChannelHandle,
		Status:        string(task.Status),
	})
}

func (s *Server) handleIndexSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.indexingService.Summary(r.Context())
	if err != nil {
		s.logger.Error("failed to load index summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load index summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleClearIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.indexingService.ClearIndex(r.Context()); err != nil {
		s.logger.Error("failed to clear index", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear index")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter := driven.TaskFilter{
		Type:  domain.TaskTypeIndexChannel,
		Limit: 50,
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.TaskStatus(status)
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	tasks, err := s.taskQueue.ListTasks(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.taskQueue.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("failed to get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Video listing

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	summary, err := s.indexingService.Summary(r.Context())
	if err != nil {
		s.logger.Error("failed to list videos", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list videos")
		return
	}

	videos := summary.Videos
	if videos == nil {
		videos = []domain.VideoSummary{}
	}
	writeJSON(w, http.StatusOK, videos)
}

// Response helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
