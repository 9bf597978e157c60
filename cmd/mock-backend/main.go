// Command mock-backend runs a deterministic fake Ollama server for local
// runs and manual testing of the gateway. It answers /api/chat,
// /api/generate and /api/tags with predictable content derived from the
// request.
//
// Prompts containing "simulate error" get an HTTP 500 with an Ollama-style
// error body; prompts containing "simulate slow" are delayed by MOCK_DELAY.
//
// Configuration:
//
//	MOCK_PORT  - Listen port (default: 11434)
//	MOCK_DELAY - Delay for "simulate slow" prompts (default: 5s)
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "11434"
	}
	delay := 5 * time.Second
	if v := os.Getenv("MOCK_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Error("invalid MOCK_DELAY", "value", v, "error", err)
			os.Exit(1)
		}
		delay = d
	}

	srv := &http.Server{Addr: ":" + port, Handler: newMux(delay)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// mockModels is the fixed model list served by /api/tags.
var mockModels = []string{"llama2:latest", "mistral:7b", "codellama:13b"}

func newMux(delay time.Duration) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) { handleChat(w, r, delay) })
	mux.HandleFunc("POST /api/generate", func(w http.ResponseWriter, r *http.Request) { handleGenerate(w, r, delay) })
	mux.HandleFunc("GET /api/tags", handleTags)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	})
	return mux
}

// --- Request types ---

type options struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  *int     `json:"num_predict,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   *bool         `json:"stream"`
	Options  options       `json:"options"`
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  *bool   `json:"stream"`
	Options options `json:"options"`
}

// --- Handlers ---

func handleChat(w http.ResponseWriter, r *http.Request, delay time.Duration) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Model == "" {
		writeError(w, http.StatusBadRequest, "model is required")
		return
	}

	prompt := lastUserMessage(req.Messages)
	if !simulate(w, r, prompt, delay) {
		return
	}

	text := respond(prompt, hasSystemPrompt(req.Messages))
	text = limitWords(text, req.Options.NumPredict)

	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += countTokens(m.Content)
	}

	writeJSON(w, map[string]any{
		"model":             req.Model,
		"created_at":        time.Now().UTC().Format(time.RFC3339Nano),
		"message":           chatMessage{Role: "assistant", Content: text},
		"done":              true,
		"done_reason":       "stop",
		"prompt_eval_count": promptTokens,
		"eval_count":        countTokens(text),
	})
}

func handleGenerate(w http.ResponseWriter, r *http.Request, delay time.Duration) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Model == "" {
		writeError(w, http.StatusBadRequest, "model is required")
		return
	}
	if !simulate(w, r, req.Prompt, delay) {
		return
	}

	text := limitWords(respond(req.Prompt, false), req.Options.NumPredict)

	writeJSON(w, map[string]any{
		"model":             req.Model,
		"created_at":        time.Now().UTC().Format(time.RFC3339Nano),
		"response":          text,
		"done":              true,
		"done_reason":       "stop",
		"prompt_eval_count": countTokens(req.Prompt),
		"eval_count":        countTokens(text),
	})
}

func handleTags(w http.ResponseWriter, r *http.Request) {
	models := make([]map[string]any, 0, len(mockModels))
	for _, name := range mockModels {
		models = append(models, map[string]any{
			"name":        name,
			"model":       name,
			"modified_at": "2024-01-01T00:00:00Z",
			"size":        3825819519,
		})
	}
	writeJSON(w, map[string]any{"models": models})
}

// simulate applies the error and delay triggers. It returns false when a
// response has already been written or the client went away.
func simulate(w http.ResponseWriter, r *http.Request, prompt string, delay time.Duration) bool {
	lower := strings.ToLower(prompt)
	if strings.Contains(lower, "simulate error") {
		writeError(w, http.StatusInternalServerError, "simulated backend failure")
		return false
	}
	if strings.Contains(lower, "simulate slow") {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return false
		}
	}
	return true
}

func respond(prompt string, system bool) string {
	switch {
	case strings.Contains(strings.ToLower(prompt), "count from 1 to 5"):
		return "1, 2, 3, 4, 5"
	case system:
		return "Ahoy there, matey! Welcome aboard!"
	default:
		return "Hello, nice day!"
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func lastUserMessage(msgs []chatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			return msgs[i].Content
		}
	}
	return ""
}

func hasSystemPrompt(msgs []chatMessage) bool {
	for _, m := range msgs {
		if m.Role == "system" {
			return true
		}
	}
	return false
}

// countTokens approximates a token count by whitespace-separated words.
func countTokens(s string) int {
	return len(strings.Fields(s))
}

// limitWords truncates text to at most *limit words when limit is set.
func limitWords(text string, limit *int) string {
	if limit == nil || *limit <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= *limit {
		return text
	}
	return strings.Join(words[:*limit], " ")
}
