package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/local/drawprep/internal/ai"
	cfgpkg "github.com/local/drawprep/internal/config"
	"github.com/local/drawprep/internal/document"
	"github.com/local/drawprep/internal/limiter"
	logpkg "github.com/local/drawprep/internal/logger"
	"github.com/local/drawprep/internal/metrics"
	"github.com/local/drawprep/internal/parser"
	"github.com/local/drawprep/internal/server"
	"github.com/local/drawprep/internal/statuscheck"
	"github.com/local/drawprep/internal/store"
	"github.com/local/drawprep/internal/volume"
)

func main() {
	_ = godotenv.Load()
	cfg := cfgpkg.FromEnv()

	_ = logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logpkg.Close()

	metrics.Init()

	ctx := context.Background()

	vol, err := volume.NewStore(ctx, cfg.Volume.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init volume store")
	}

	st, err := store.NewRedisStatus(cfg.Volume.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init redis status store")
	}
	defer st.Close()

	factory := document.NewFactory(document.FactoryOptions{
		DPI:         cfg.Image.DPI,
		MaxWidth:    cfg.Image.MaxWidth,
		MaxHeight:   cfg.Image.MaxHeight,
		JPEGQuality: cfg.Image.JPEGQuality,
	})

	var pageParser server.PageParser
	if client, model := visionClient(cfg.Providers); client != nil {
		lim, err := limiter.New(limiter.Options{
			RedisURL:    cfg.Volume.RedisURL,
			MaxInflight: cfg.Providers.MaxInflight,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init limiter")
		}
		defer lim.CloseClient()

		pageParser = parser.New(client, lim, parser.Options{
			Model:          model,
			SystemPrompt:   cfg.Providers.SystemPrompt,
			RequestTimeout: cfg.Providers.RequestTimeout,
		})
	}

	checker := statuscheck.New(statuscheck.Options{
		Redis:        st,
		S3Bucket:     cfg.Volume.Bucket,
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
	})

	srv := server.New(server.Dependencies{
		Volume:   vol,
		Status:   st,
		Factory:  factory,
		Parser:   pageParser,
		Checker:  checker,
		Fragment: cfg.Fragment,
		JPEGQual: cfg.Image.JPEGQuality,
	})

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	mux.Handle("/metrics", metrics.Handler())

	httpSrv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: mux}

	go func() {
		log.Info().Msgf("HTTP server listening on :%s", cfg.Server.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}

// visionClient picks the configured engine; a missing API key disables the
// parse step rather than failing startup.
func visionClient(p cfgpkg.ProvidersConfig) (ai.Client, string) {
	switch p.Engine {
	case "anthropic":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			log.Warn().Msg("ANTHROPIC_API_KEY not set, parse step disabled")
			return nil, ""
		}
		return ai.NewAnthropicClient(), p.AnthropicModel
	case "openai":
		if os.Getenv("OPENAI_API_KEY") == "" {
			log.Warn().Msg("OPENAI_API_KEY not set, parse step disabled")
			return nil, ""
		}
		return ai.NewOpenAIClient(), p.OpenAIModel
	default:
		log.Warn().Str("engine", p.Engine).Msg("unknown vision engine, parse step disabled")
		return nil, ""
	}
}
