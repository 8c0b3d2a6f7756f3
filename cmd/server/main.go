// cmd/server runs Aegis's interactive HTTP entry point: one POST endpoint
// that normalizes a chat-style request body, runs it through the C9
// agent pipeline, and streams the resulting events back as
// newline-delimited JSON.
//
// Grounded on the teacher's cmd/api/main.go (godotenv.Load, bare
// net/http.HandleFunc registration, no router library — the teacher
// never reaches for one, so neither does this entry point).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"aegis/pkg/core/bootstrap"
	"aegis/pkg/core/conversation"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/monitor"
	"aegis/pkg/core/obslog"
	"aegis/pkg/core/pipeline"
	"aegis/pkg/core/prompt"
	"aegis/pkg/core/retrieval"
	"aegis/pkg/core/settings"
	"aegis/pkg/core/store"
	"aegis/pkg/core/subagent"
)

const migrationsDir = "pkg/core/store/migrations"

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("[WARNING] .env not found, relying on process environment")
	}

	cfg, err := settings.Load()
	if err != nil {
		fmt.Printf("[FATAL] failed to load settings: %v\n", err)
		os.Exit(1)
	}
	obslog.Init(cfg.LogLevel)

	ctx := context.Background()

	if _, err := bootstrap.SetupSSL(cfg); err != nil {
		obslog.Error("server.startup_failed", "stage", "ssl", "error", err.Error())
		os.Exit(1)
	}
	if _, err := bootstrap.SetupAuthentication(ctx, cfg, http.DefaultClient); err != nil {
		obslog.Error("server.startup_failed", "stage", "auth", "error", err.Error())
		os.Exit(1)
	}

	if err := store.Migrate(cfg, migrationsDir); err != nil {
		obslog.Error("server.startup_failed", "stage", "migrate", "error", err.Error())
		os.Exit(1)
	}

	gateway, err := store.Open(ctx, cfg)
	if err != nil {
		obslog.Error("server.startup_failed", "stage", "store_open", "error", err.Error())
		os.Exit(1)
	}
	defer gateway.Close()

	connectors := llm.NewRegistry()
	if cfg.APIKey != "" {
		gemini, err := llm.NewGeminiConnector(ctx, cfg.APIKey, getEnv("GEMINI_MODEL", "gemini-2.0-flash"), getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"))
		if err != nil {
			obslog.Error("server.startup_failed", "stage", "llm_connector", "error", err.Error())
			os.Exit(1)
		}
		connectors.Register("", gemini)
	} else {
		obslog.Warn("server.no_api_key_configured")
	}

	prompts := prompt.New(gateway)
	if err := prompts.Reload(ctx); err != nil {
		obslog.Error("server.startup_failed", "stage", "prompt_reload", "error", err.Error())
		os.Exit(1)
	}

	mon := monitor.New(gateway)
	engine := retrieval.New(gateway)

	orchestrator := &pipeline.Orchestrator{
		Connectors:   connectors,
		Prompts:      prompts,
		Monitor:      mon,
		Availability: gateway,
		Subagents: map[string]pipeline.Subagent{
			"transcripts":  &subagent.TranscriptsSubagent{Connectors: connectors, Prompts: prompts, Engine: engine, Monitor: mon},
			"benchmarking": &subagent.BenchmarkingSubagent{Connectors: connectors, Prompts: prompts, Store: gateway, Monitor: mon},
			"reports":      &subagent.ReportsSubagent{Store: gateway, Monitor: mon},
			"rts":          &subagent.RtsSubagent{Connectors: connectors, Prompts: prompts, Store: gateway, Monitor: mon},
		},
	}

	conversationCfg := conversation.Config{
		AllowedRoles: cfg.ConversationAllowedRoles,
		HistoryCap:   cfg.ConversationHistoryCap,
	}
	dbNames := []string{"transcripts", "benchmarking", "reports", "rts"}

	http.HandleFunc("/api/chat", handleChat(orchestrator, conversationCfg, dbNames))
	http.HandleFunc("/healthz", handleHealth)

	addr := getEnv("SERVER_ADDR", ":8080")
	fmt.Printf("Aegis server starting on %s...\n", addr)
	fmt.Println("  - POST /api/chat")
	fmt.Println("  - GET  /healthz")
	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("[FATAL] server failed to start: %v\n", err)
		os.Exit(1)
	}
}

func handleChat(o *pipeline.Orchestrator, convCfg conversation.Config, dbNames []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var raw conversation.RawInput
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		conv, err := conversation.Normalize(raw, convCfg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		executionID := uuid.NewString()
		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher, _ := w.(http.Flusher)

		events := o.RunQuery(r.Context(), executionID, conv, dbNames)
		enc := json.NewEncoder(w)
		for ev := range events {
			_ = enc.Encode(ev)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
