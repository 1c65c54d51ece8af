package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/w-h-a/rag"
	"github.com/w-h-a/rag/docstore"
	memorydocs "github.com/w-h-a/rag/docstore/memory"
	postgresdocs "github.com/w-h-a/rag/docstore/postgres"
	sqlitedocs "github.com/w-h-a/rag/docstore/sqlite"
	"github.com/w-h-a/rag/embedder"
	googleembedder "github.com/w-h-a/rag/embedder/google"
	"github.com/w-h-a/rag/embedder/hash"
	openaiembedder "github.com/w-h-a/rag/embedder/openai"
	"github.com/w-h-a/rag/generator"
	anthropicgenerator "github.com/w-h-a/rag/generator/anthropic"
	googlegenerator "github.com/w-h-a/rag/generator/google"
	openaigenerator "github.com/w-h-a/rag/generator/openai"
	handler "github.com/w-h-a/rag/internal/handler/http"
	"github.com/w-h-a/rag/server"
	httpserver "github.com/w-h-a/rag/server/http"
	"github.com/w-h-a/rag/storer"
	memorystorer "github.com/w-h-a/rag/storer/memory"
	postgresstorer "github.com/w-h-a/rag/storer/postgres"
	qdrantstorer "github.com/w-h-a/rag/storer/qdrant"
	weaviatestorer "github.com/w-h-a/rag/storer/weaviate"
	"github.com/w-h-a/rag/userstore"
	memoryusers "github.com/w-h-a/rag/userstore/memory"
	postgresusers "github.com/w-h-a/rag/userstore/postgres"
	sqliteusers "github.com/w-h-a/rag/userstore/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	cfg struct {
		// Server config
		Port        string        `help:"Port to listen on" default:"8000" env:"PORT"`
		RequireAuth bool          `help:"Require a bearer token on ingest and question routes" default:"false" env:"REQUIRE_AUTH"`
		CallTimeout time.Duration `help:"Timeout for each outbound model, index or store call" default:"30s" env:"CALL_TIMEOUT"`
		LogLevel    string        `help:"Log level" enum:"debug,info,warn,error" default:"info" env:"LOG_LEVEL"`
		LogFormat   string        `help:"Log format" enum:"json,text" default:"json" env:"LOG_FORMAT"`

		// Provider keys
		GeminiApiKey    string `help:"API key for Gemini" env:"GEMINI_API_KEY"`
		OpenaiApiKey    string `help:"API key for OpenAI" env:"OPENAI_API_KEY"`
		AnthropicApiKey string `help:"API key for Anthropic" env:"ANTHROPIC_API_KEY"`

		// Embedder config
		Embedder      string `help:"Embedding provider" enum:"google,openai,hash" default:"google" env:"EMBEDDER"`
		EmbedderModel string `help:"Model identifier for embedder (provider default when empty)" default:"" env:"EMBEDDER_MODEL"`
		Dimension     int    `help:"Vector dimension shared by embedder and index" default:"768" env:"VECTOR_DIMENSION"`

		// Vector index config
		Storer         string `help:"Vector index backend" enum:"qdrant,postgres,weaviate,memory" default:"qdrant" env:"STORER"`
		Collection     string `help:"Vector collection name" default:"physical_ai_docs" env:"COLLECTION"`
		QdrantURL      string `help:"Qdrant base URL" env:"QDRANT_URL"`
		QdrantApiKey   string `help:"Qdrant API key" env:"QDRANT_API_KEY"`
		WeaviateURL    string `help:"Weaviate base URL" env:"WEAVIATE_URL"`
		WeaviateApiKey string `help:"Weaviate API key" env:"WEAVIATE_API_KEY"`

		// Relational store config
		Database    string `help:"Document and user store backend" enum:"postgres,sqlite,memory" default:"postgres" env:"DATABASE"`
		DatabaseURL string `help:"Postgres connection string" env:"NEON_DATABASE_URL"`
		SqlitePath  string `help:"SQLite file for the sqlite backend" default:"rag.db" env:"SQLITE_PATH"`

		// Generator config
		Generator      string `help:"Generative model provider" enum:"google,openai,anthropic" default:"google" env:"GENERATOR"`
		GeneratorModel string `help:"Model identifier for generator (provider default when empty)" default:"" env:"GENERATOR_MODEL"`
		MaxTokens      int    `help:"Maximum tokens per generated answer" default:"1024" env:"MAX_TOKENS"`
		Domain         string `help:"Course domain named in the prompt" default:"Physical AI and Robotics" env:"COURSE_DOMAIN"`

		// Auth config
		JwtSecret string `help:"HS256 secret for session tokens" required:"" env:"JWT_SECRET"`
	}
)

func main() {
	// Load .env before parsing so env tags see it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	_ = kong.Parse(&cfg, kong.Name("rag"), kong.Description("Retrieval-augmented course assistant"))

	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{
		Timeout:   cfg.CallTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	// Create providers
	e := newEmbedder(client)
	s := newStorer(client)
	docs, users := newStores()
	g := newGenerator(client)

	// Make sure the collection exists before serving
	ensureCtx, cancel := context.WithTimeout(ctx, cfg.CallTimeout)
	if err := s.EnsureCollection(ensureCtx); err != nil {
		cancel()
		slog.ErrorContext(ctx, "failed to ensure vector collection", "collection", cfg.Collection, "error", err)
		os.Exit(1)
	}
	cancel()

	// Create RAG
	r := rag.New(
		e,
		s,
		docs,
		users,
		g,
		rag.WithCollection(cfg.Collection),
		rag.WithDomain(cfg.Domain),
		rag.WithJWTSecret(cfg.JwtSecret),
		rag.WithCallTimeout(cfg.CallTimeout),
	)
	defer func() {
		if err := r.Close(); err != nil {
			slog.Error("failed to close clients", "error", err)
		}
	}()

	// Create server
	srv := httpserver.NewServer(
		server.WithName("rag"),
		server.WithAddress(":"+cfg.Port),
		httpserver.WithMiddleware(
			handler.AccessLog,
			handler.CORS,
		),
	)

	if err := srv.Handle(handler.NewRouter(r, cfg.RequireAuth)); err != nil {
		slog.ErrorContext(ctx, "failed to register handler", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		slog.ErrorContext(ctx, "failed to start server", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(
		ctx,
		"rag backend running",
		"embedder", cfg.Embedder,
		"storer", cfg.Storer,
		"database", cfg.Database,
		"generator", cfg.Generator,
		"model", r.Model(),
		"require_auth", cfg.RequireAuth,
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("failed to stop server", "error", err)
	}
}

func setupLogging() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(h))
}

func newEmbedder(client *http.Client) embedder.Embedder {
	switch cfg.Embedder {
	case "openai":
		return openaiembedder.NewEmbedder(
			embedder.WithApiKey(cfg.OpenaiApiKey),
			embedder.WithModel(cfg.EmbedderModel),
			embedder.WithDimension(cfg.Dimension),
			embedder.WithHTTPClient(client),
		)
	case "hash":
		return hash.NewEmbedder(
			embedder.WithDimension(cfg.Dimension),
		)
	default:
		return googleembedder.NewEmbedder(
			embedder.WithApiKey(cfg.GeminiApiKey),
			embedder.WithModel(cfg.EmbedderModel),
			embedder.WithDimension(cfg.Dimension),
		)
	}
}

func newStorer(client *http.Client) storer.Storer {
	opts := []storer.Option{
		storer.WithCollection(cfg.Collection),
		storer.WithDimension(cfg.Dimension),
		storer.WithHTTPClient(client),
	}

	switch cfg.Storer {
	case "postgres":
		return postgresstorer.NewStorer(append(opts, storer.WithLocation(cfg.DatabaseURL))...)
	case "weaviate":
		return weaviatestorer.NewStorer(append(opts,
			storer.WithLocation(cfg.WeaviateURL),
			storer.WithApiKey(cfg.WeaviateApiKey),
		)...)
	case "memory":
		return memorystorer.NewStorer(opts...)
	default:
		return qdrantstorer.NewStorer(append(opts,
			storer.WithLocation(cfg.QdrantURL),
			storer.WithApiKey(cfg.QdrantApiKey),
		)...)
	}
}

func newStores() (docstore.DocStore, userstore.UserStore) {
	switch cfg.Database {
	case "sqlite":
		return sqlitedocs.NewDocStore(docstore.WithLocation(cfg.SqlitePath)),
			sqliteusers.NewUserStore(userstore.WithLocation(cfg.SqlitePath))
	case "memory":
		return memorydocs.NewDocStore(), memoryusers.NewUserStore()
	default:
		return postgresdocs.NewDocStore(docstore.WithLocation(cfg.DatabaseURL)),
			postgresusers.NewUserStore(userstore.WithLocation(cfg.DatabaseURL))
	}
}

func newGenerator(client *http.Client) generator.Generator {
	opts := []generator.Option{
		generator.WithModel(cfg.GeneratorModel),
		generator.WithMaxTokens(cfg.MaxTokens),
	}

	switch cfg.Generator {
	case "openai":
		return openaigenerator.NewGenerator(append(opts,
			generator.WithApiKey(cfg.OpenaiApiKey),
			generator.WithHTTPClient(client),
		)...)
	case "anthropic":
		return anthropicgenerator.NewGenerator(append(opts,
			generator.WithApiKey(cfg.AnthropicApiKey),
			generator.WithHTTPClient(client),
		)...)
	default:
		return googlegenerator.NewGenerator(append(opts,
			generator.WithApiKey(cfg.GeminiApiKey),
		)...)
	}
}
