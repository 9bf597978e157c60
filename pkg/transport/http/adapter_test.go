package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edgelab/llmgate/pkg/api"
	"github.com/edgelab/llmgate/pkg/engine"
	"github.com/edgelab/llmgate/pkg/provider/ollama"
)

// fakeOllama is a minimal Ollama server. Each handler may be replaced per
// test; lastChat holds the most recent /api/chat body.
type fakeOllama struct {
	chat     http.HandlerFunc
	generate http.HandlerFunc
	tags     http.HandlerFunc

	lastChat map[string]any
}

func newFakeOllama(t *testing.T) (*fakeOllama, *httptest.Server) {
	t.Helper()
	f := &fakeOllama{}
	f.chat = func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&f.lastChat)
		io.WriteString(w, `{"model":"llama2","message":{"role":"assistant","content":"Hello there!"},"done":true,"prompt_eval_count":10,"eval_count":4}`)
	}
	f.generate = func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"model":"llama2","response":"Once upon a time","done":true,"prompt_eval_count":3,"eval_count":5}`)
	}
	f.tags = func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"models":[{"name":"llama2:latest"},{"name":"mistral:7b"}]}`)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) { f.chat(w, r) })
	mux.HandleFunc("POST /api/generate", func(w http.ResponseWriter, r *http.Request) { f.generate(w, r) })
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) { f.tags(w, r) })

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

// newTestGateway wires the real engine to an Ollama client pointing at
// backendURL and returns the adapter's full handler.
func newTestGateway(t *testing.T, backendURL string, cfg Config) http.Handler {
	t.Helper()

	p, err := ollama.New(ollama.Config{
		BaseURL:         backendURL,
		GenerateTimeout: 2 * time.Second,
		ListTimeout:     2 * time.Second,
	})
	if err != nil {
		t.Fatalf("ollama.New: %v", err)
	}
	eng, err := engine.New(p, engine.Config{
		DefaultModel:       "llama2",
		DefaultTemperature: 0.7,
		DefaultMaxTokens:   2048,
		BackendEndpoint:    backendURL,
		ServiceName:        "LLM Integration Microservice",
		Version:            "1.0.0",
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	return NewAdapter(eng, api.NewDocumentation("LLM Integration Microservice", "1.0.0"), cfg).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding body %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestChatCompletionsSuccess(t *testing.T) {
	fake, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	rec := do(t, h, http.MethodPost, "/v1/chat/completions",
		`{"messages":[{"role":"user","content":"Hi"}],"temperature":0.2,"max_tokens":64}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	resp := decodeBody[api.ChatResponse](t, rec)
	if !strings.HasPrefix(resp.ID, "chatcmpl-") {
		t.Errorf("id = %q, want chatcmpl- prefix", resp.ID)
	}
	if resp.Model != "llama2" {
		t.Errorf("model = %q, want default llama2", resp.Model)
	}
	if resp.Message.Role != "assistant" || resp.Message.Content != "Hello there!" {
		t.Errorf("message = %+v", resp.Message)
	}
	if resp.Usage == nil || resp.Usage.PromptTokens != 10 || resp.Usage.CompletionTokens != 4 || resp.Usage.TotalTokens != 14 {
		t.Errorf("usage = %+v, want 10/4/14", resp.Usage)
	}

	if fake.lastChat["stream"] != false {
		t.Errorf("backend stream = %v, want false", fake.lastChat["stream"])
	}
	opts, _ := fake.lastChat["options"].(map[string]any)
	if opts["temperature"] != 0.2 || opts["num_predict"] != float64(64) {
		t.Errorf("backend options = %v", opts)
	}
}

func TestCompletionsSuccess(t *testing.T) {
	_, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	rec := do(t, h, http.MethodPost, "/v1/completions", `{"prompt":"Tell me a story","model":"mistral:7b"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[api.CompletionResponse](t, rec)
	if resp.Text != "Once upon a time" {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.Model != "mistral:7b" {
		t.Errorf("model = %q, want mistral:7b", resp.Model)
	}
	if resp.Usage.TotalTokens != 8 {
		t.Errorf("total tokens = %d, want 8", resp.Usage.TotalTokens)
	}
}

func TestListModels(t *testing.T) {
	_, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	rec := do(t, h, http.MethodGet, "/v1/models", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	list := decodeBody[api.ModelList](t, rec)
	if list.Object != "list" || len(list.Data) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list.Data[0].ID != "llama2:latest" || list.Data[1].ID != "mistral:7b" {
		t.Errorf("model order = %s, %s", list.Data[0].ID, list.Data[1].ID)
	}
	if list.Data[0].Object != "model" || list.Data[0].OwnedBy != "local" {
		t.Errorf("model entry = %+v", list.Data[0])
	}
}

func TestListModelsEmpty(t *testing.T) {
	fake, backend := newFakeOllama(t)
	fake.tags = func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, `{"models":[]}`) }
	h := newTestGateway(t, backend.URL, DefaultConfig())

	rec := do(t, h, http.MethodGet, "/v1/models", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty data array", rec.Body.String())
	}
}

func TestValidationErrors(t *testing.T) {
	_, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	tests := []struct {
		name      string
		path      string
		body      string
		wantField string
	}{
		{"empty messages", "/v1/chat/completions", `{"messages":[]}`, "messages"},
		{"missing messages", "/v1/chat/completions", `{"model":"llama2"}`, "messages"},
		{"temperature too high", "/v1/chat/completions", `{"messages":[{"role":"user","content":"x"}],"temperature":2.5}`, "temperature"},
		{"negative temperature", "/v1/chat/completions", `{"messages":[{"role":"user","content":"x"}],"temperature":-0.1}`, "temperature"},
		{"zero max tokens", "/v1/chat/completions", `{"messages":[{"role":"user","content":"x"}],"max_tokens":0}`, "max_tokens"},
		{"missing content", "/v1/chat/completions", `{"messages":[{"role":"user"}]}`, "messages[0].content"},
		{"wrong type", "/v1/chat/completions", `{"messages":"hi"}`, "messages"},
		{"missing prompt", "/v1/completions", `{}`, "prompt"},
		{"completion temperature", "/v1/completions", `{"prompt":"x","temperature":3}`, "temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422, body = %s", rec.Code, rec.Body.String())
			}
			resp := decodeBody[api.ErrorResponse](t, rec)
			if resp.Detail == "" {
				t.Error("detail is empty")
			}
			found := false
			for _, fe := range resp.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("errors = %+v, want an entry for %q", resp.Errors, tt.wantField)
			}
		})
	}
}

func TestValidationReportsEveryViolation(t *testing.T) {
	_, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	rec := do(t, h, http.MethodPost, "/v1/chat/completions", `{"messages":[],"temperature":5,"max_tokens":-1}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[api.ErrorResponse](t, rec)
	if len(resp.Errors) != 3 {
		t.Errorf("got %d errors, want 3: %+v", len(resp.Errors), resp.Errors)
	}
}

func TestMalformedJSON(t *testing.T) {
	_, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	for _, body := range []string{
		`{"messages":`,
		`not json`,
		`{"messages":[{"role":"user","content":"Hi"}]} xyz`,
		`{"messages":[{"role":"user","content":"Hi"}]}{"messages":[]}`,
	} {
		rec := do(t, h, http.MethodPost, "/v1/chat/completions", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("body %q: status = %d, want 422", body, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/completions", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty body: status = %d, want 422", rec.Code)
	}
}

func TestTrailingWhitespaceAccepted(t *testing.T) {
	_, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	rec := do(t, h, http.MethodPost, "/v1/completions", "{\"prompt\":\"x\"}\n\t ")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body = %s", rec.Code, rec.Body.String())
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	_, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	rec := do(t, h, http.MethodPost, "/v1/chat/completions",
		`{"messages":[{"role":"user","content":"Hi"}],"top_p":0.9,"stream":true}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body = %s", rec.Code, rec.Body.String())
	}
}

func TestBodyTooLarge(t *testing.T) {
	_, backend := newFakeOllama(t)
	cfg := DefaultConfig()
	cfg.MaxBodySize = 64
	h := newTestGateway(t, backend.URL, cfg)

	body := `{"messages":[{"role":"user","content":"` + strings.Repeat("a", 200) + `"}]}`
	rec := do(t, h, http.MethodPost, "/v1/chat/completions", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestBackendFailures(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		method     string
		body       string
		setup      func(f *fakeOllama)
		wantPrefix string
	}{
		{
			name:   "chat backend 500",
			path:   "/v1/chat/completions",
			method: http.MethodPost,
			body:   `{"messages":[{"role":"user","content":"Hi"}]}`,
			setup: func(f *fakeOllama) {
				f.chat = func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
					io.WriteString(w, `{"error":"model not loaded"}`)
				}
			},
			wantPrefix: "LLM service unavailable: ",
		},
		{
			name:   "generate malformed body",
			path:   "/v1/completions",
			method: http.MethodPost,
			body:   `{"prompt":"x"}`,
			setup: func(f *fakeOllama) {
				f.generate = func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, `{"response":`) }
			},
			wantPrefix: "LLM service unavailable: ",
		},
		{
			name:   "chat null body",
			path:   "/v1/chat/completions",
			method: http.MethodPost,
			body:   `{"messages":[{"role":"user","content":"Hi"}]}`,
			setup: func(f *fakeOllama) {
				f.chat = func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "null") }
			},
			wantPrefix: "LLM service unavailable: ",
		},
		{
			name:   "tags backend 404",
			path:   "/v1/models",
			method: http.MethodGet,
			setup: func(f *fakeOllama) {
				f.tags = func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }
			},
			wantPrefix: "Unable to fetch models: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, backend := newFakeOllama(t)
			tt.setup(fake)
			h := newTestGateway(t, backend.URL, DefaultConfig())

			rec := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503, body = %s", rec.Code, rec.Body.String())
			}
			resp := decodeBody[api.ErrorResponse](t, rec)
			if !strings.HasPrefix(resp.Detail, tt.wantPrefix) {
				t.Errorf("detail = %q, want prefix %q", resp.Detail, tt.wantPrefix)
			}
		})
	}
}

func TestBackendUnreachable(t *testing.T) {
	_, backend := newFakeOllama(t)
	url := backend.URL
	backend.Close()

	h := newTestGateway(t, url, DefaultConfig())
	rec := do(t, h, http.MethodPost, "/v1/chat/completions", `{"messages":[{"role":"user","content":"Hi"}]}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHealthDoesNotContactBackend(t *testing.T) {
	_, backend := newFakeOllama(t)
	url := backend.URL
	backend.Close()

	h := newTestGateway(t, url, DefaultConfig())
	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[api.HealthResponse](t, rec)
	if resp.Status != "healthy" || resp.LLMEndpoint != url || resp.Model != "llama2" {
		t.Errorf("health = %+v", resp)
	}
	if _, err := time.Parse(time.RFC3339Nano, resp.Timestamp); err != nil {
		t.Errorf("timestamp %q: %v", resp.Timestamp, err)
	}
}

func TestInfoAndDocs(t *testing.T) {
	_, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("info status = %d", rec.Code)
	}
	info := decodeBody[api.ServiceInfo](t, rec)
	if info.Service != "LLM Integration Microservice" || info.Version != "1.0.0" || info.Status != "running" || info.Docs != "/docs" {
		t.Errorf("info = %+v", info)
	}

	rec = do(t, h, http.MethodGet, "/docs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("docs status = %d", rec.Code)
	}
	docs := decodeBody[map[string]any](t, rec)
	schemas, _ := docs["schemas"].(map[string]any)
	if _, ok := schemas["ChatRequest"]; !ok {
		t.Errorf("docs schemas missing ChatRequest: %v", docs)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	_, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	rec := do(t, h, http.MethodGet, "/v1/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", rec.Code)
	}
	if resp := decodeBody[api.ErrorResponse](t, rec); resp.Detail != "Not Found" {
		t.Errorf("detail = %q", resp.Detail)
	}

	rec = do(t, h, http.MethodGet, "/v1/chat/completions", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "POST" {
		t.Errorf("Allow = %q, want POST", allow)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	do(t, h, http.MethodGet, "/health", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "llmgate_requests_total") {
		t.Error("metrics output missing llmgate_requests_total")
	}
}

func TestMetricsDisabled(t *testing.T) {
	_, backend := newFakeOllama(t)
	cfg := DefaultConfig()
	cfg.MetricsPath = ""
	h := newTestGateway(t, backend.URL, cfg)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	_, backend := newFakeOllama(t)
	h := newTestGateway(t, backend.URL, DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want echoed value", got)
	}

	rec = do(t, h, http.MethodGet, "/health", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not generated")
	}
}

// stubGateway returns fixed results, for adapter behaviour that does not
// depend on the engine.
type stubGateway struct {
	err error
}

func (s *stubGateway) ChatCompletion(context.Context, *api.ChatRequest) (*api.ChatResponse, error) {
	return nil, s.err
}

func (s *stubGateway) Completion(context.Context, *api.CompletionRequest) (*api.CompletionResponse, error) {
	return nil, s.err
}

func (s *stubGateway) ListModels(context.Context) (*api.ModelList, error) {
	return nil, s.err
}

func (s *stubGateway) Health() *api.HealthResponse { panic("health exploded") }
func (s *stubGateway) Info() *api.ServiceInfo      { return &api.ServiceInfo{Service: "stub"} }

func TestUntypedErrorIsInternal(t *testing.T) {
	h := NewAdapter(&stubGateway{err: errors.New("disk on fire")}, nil, DefaultConfig()).Handler()

	rec := do(t, h, http.MethodPost, "/v1/completions", `{"prompt":"x"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	resp := decodeBody[api.ErrorResponse](t, rec)
	if resp.Detail != "Internal server error" {
		t.Errorf("detail = %q", resp.Detail)
	}
	if !strings.Contains(resp.Error, "disk on fire") {
		t.Errorf("error = %q, want cause", resp.Error)
	}
}

func TestPanicRecovered(t *testing.T) {
	h := NewAdapter(&stubGateway{}, nil, DefaultConfig()).Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("health exploded")) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestDocsOmittedWithoutDocumentation(t *testing.T) {
	h := NewAdapter(&stubGateway{}, nil, DefaultConfig()).Handler()

	rec := do(t, h, http.MethodGet, "/docs", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
