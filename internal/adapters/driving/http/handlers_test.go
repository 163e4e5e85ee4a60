package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven/mocks"
)

// stubAuthService authenticates one fixed password/token pair
type stubAuthService struct {
	password string
	token    string
}

func (s *stubAuthService) Login(ctx context.Context, password string) (string, error) {
	if password != s.password {
		return "", domain.ErrInvalidCredentials
	}
	return s.token, nil
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token != s.token {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.AuthContext{Subject: "api"}, nil
}

type stubChatService struct {
	result *domain.ChatResult
	err    error
	asked  []string
	opts   []domain.AskOptions
}

func (s *stubChatService) Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.ChatResult, error) {
	s.asked = append(s.asked, question)
	s.opts = append(s.opts, opts)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubIndexingService struct {
	summary    *domain.IndexSummary
	summaryErr error
	cleared    int
}

func (s *stubIndexingService) IndexChannel(ctx context.Context, handle string, opts domain.IndexOptions) (*domain.IndexingStats, error) {
	return &domain.IndexingStats{}, nil
}

func (s *stubIndexingService) ClearIndex(ctx context.Context) error {
	s.cleared++
	return nil
}

func (s *stubIndexingService) Summary(ctx context.Context) (*domain.IndexSummary, error) {
	if s.summaryErr != nil {
		return nil, s.summaryErr
	}
	return s.summary, nil
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

type testEnv struct {
	server *Server
	auth   *stubAuthService
	chat   *stubChatService
	index  *stubIndexingService
	queue  *mocks.MockTaskQueue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		auth: &stubAuthService{password: "hunter2", token: "valid-token"},
		chat: &stubChatService{
			result: &domain.ChatResult{
				Question: "what is go?",
				Answer:   "Go is a programming language.",
				Sources:  []domain.Source{{VideoID: "v1", VideoTitle: "Intro", Score: 0.9}},
				Grounded: true,
			},
		},
		index: &stubIndexingService{
			summary: &domain.IndexSummary{
				TotalChunks: 3,
				Dimension:   384,
				Model:       "all-minilm",
				Videos: []domain.VideoSummary{
					{VideoID: "v1", VideoTitle: "Intro", ChannelID: "ch1", ChunkCount: 3},
				},
			},
		},
		queue: mocks.NewMockTaskQueue(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.server = NewServer(DefaultConfig(), logger, env.auth, env.chat, env.index, env.queue, okPinger{}, okPinger{})
	return env
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "GET", "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	body := decodeBody[map[string]string](t, rec)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestHandleReady(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "GET", "/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandleReady_BackendDown(t *testing.T) {
	env := newTestEnv(t)
	env.server.store = failingPinger{}

	rec := env.request(t, "GET", "/ready", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "GET", "/version", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	body := decodeBody[map[string]string](t, rec)
	if body["version"] != "dev" {
		t.Errorf("version = %q, want dev", body["version"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "POST", "/api/v1/auth/login", "", LoginRequest{Password: "hunter2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody[LoginResponse](t, rec)
	if body.Token != "valid-token" {
		t.Errorf("token = %q, want valid-token", body.Token)
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "POST", "/api/v1/auth/login", "", LoginRequest{Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandleLogin_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	env.server.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleChat_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "POST", "/api/v1/chat", "", ChatRequest{Question: "what is go?"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = env.request(t, "POST", "/api/v1/chat", "bogus", ChatRequest{Question: "what is go?"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for bad token", rec.Code)
	}
}

func TestHandleChat_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "POST", "/api/v1/chat", "valid-token", ChatRequest{Question: "what is go?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody[domain.ChatResult](t, rec)
	if body.Answer != "Go is a programming language." {
		t.Errorf("answer = %q", body.Answer)
	}
	if !body.Grounded {
		t.Error("expected grounded result")
	}
	if len(body.Sources) != 1 {
		t.Errorf("len(sources) = %d, want 1", len(body.Sources))
	}

	if len(env.chat.asked) != 1 || env.chat.asked[0] != "what is go?" {
		t.Errorf("asked = %v", env.chat.asked)
	}
	if env.chat.opts[0].TopK != domain.DefaultAskOptions().TopK {
		t.Errorf("TopK = %d, want default", env.chat.opts[0].TopK)
	}
}

func TestHandleChat_CustomOptions(t *testing.T) {
	env := newTestEnv(t)

	env.request(t, "POST", "/api/v1/chat", "valid-token", ChatRequest{
		Question:  "what is go?",
		TopK:      10,
		ChannelID: "ch1",
	})

	if env.chat.opts[0].TopK != 10 {
		t.Errorf("TopK = %d, want 10", env.chat.opts[0].TopK)
	}
	if env.chat.opts[0].ChannelID != "ch1" {
		t.Errorf("ChannelID = %q, want ch1", env.chat.opts[0].ChannelID)
	}
}

func TestHandleChat_EmptyQuestion(t *testing.T) {
	env := newTestEnv(t)
	env.chat.err = domain.ErrInvalidInput

	rec := env.request(t, "POST", "/api/v1/chat", "valid-token", ChatRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleChat_ServicesNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.chat.err = domain.ErrServiceUnavailable

	rec := env.request(t, "POST", "/api/v1/chat", "valid-token", ChatRequest{Question: "q"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleIndexChannel_Enqueues(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "POST", "/api/v1/index", "valid-token", IndexRequest{
		ChannelHandle: "@techtalks",
		MaxVideos:     10,
		Clear:         true,
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody[IndexAccepted](t, rec)
	if body.TaskID == "" {
		t.Error("expected task_id")
	}
	if body.Status != string(domain.TaskStatusPending) {
		t.Errorf("status = %q, want pending", body.Status)
	}

	task, _ := env.queue.GetTask(context.Background(), body.TaskID)
	if task == nil {
		t.Fatal("task not enqueued")
	}
	if task.ChannelHandle() != "@techtalks" {
		t.Errorf("channel handle = %q", task.ChannelHandle())
	}
	opts := task.IndexOptions()
	if opts.MaxVideos != 10 || !opts.Clear {
		t.Errorf("opts = %+v", opts)
	}
}

func TestHandleIndexChannel_MissingHandle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "POST", "/api/v1/index", "valid-token", IndexRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleIndexSummary(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "GET", "/api/v1/index", "valid-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody[domain.IndexSummary](t, rec)
	if body.TotalChunks != 3 {
		t.Errorf("total_chunks = %d, want 3", body.TotalChunks)
	}
	if body.Dimension != 384 {
		t.Errorf("dimension = %d, want 384", body.Dimension)
	}
}

func TestHandleClearIndex(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "DELETE", "/api/v1/index", "valid-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if env.index.cleared != 1 {
		t.Errorf("cleared = %d, want 1", env.index.cleared)
	}
}

func TestHandleListTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task := domain.NewIndexChannelTask("@techtalks", domain.DefaultIndexOptions())
	_ = env.queue.Enqueue(ctx, task)

	rec := env.request(t, "GET", "/api/v1/index/tasks", "valid-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	tasks := decodeBody[[]*domain.Task](t, rec)
	if len(tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(tasks))
	}
	if tasks[0].ID != task.ID {
		t.Errorf("task ID = %s, want %s", tasks[0].ID, task.ID)
	}
}

func TestHandleListTasks_Empty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "GET", "/api/v1/index/tasks", "valid-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// Must serialize as [], not null
	if body := rec.Body.String(); body == "null\n" {
		t.Error("expected empty array, got null")
	}
}

func TestHandleGetTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task := domain.NewIndexChannelTask("@techtalks", domain.DefaultIndexOptions())
	_ = env.queue.Enqueue(ctx, task)

	rec := env.request(t, "GET", "/api/v1/index/tasks/"+task.ID, "valid-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	got := decodeBody[domain.Task](t, rec)
	if got.ID != task.ID {
		t.Errorf("task ID = %s, want %s", got.ID, task.ID)
	}
}

func TestHandleGetTask_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "GET", "/api/v1/index/tasks/missing", "valid-token", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleListVideos(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, "GET", "/api/v1/videos", "valid-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	videos := decodeBody[[]domain.VideoSummary](t, rec)
	if len(videos) != 1 {
		t.Fatalf("len(videos) = %d, want 1", len(videos))
	}
	if videos[0].VideoID != "v1" {
		t.Errorf("video ID = %s, want v1", videos[0].VideoID)
	}
}
