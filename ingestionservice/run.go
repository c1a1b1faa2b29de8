// Package ingestionservice boots the tenant ingestion HTTP service.
package ingestionservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/vaultshq/vaults-governance/internal/api"
	"github.com/vaultshq/vaults-governance/internal/api/recovery"
	"github.com/vaultshq/vaults-governance/internal/config"
	"github.com/vaultshq/vaults-governance/internal/factory"
	"github.com/vaultshq/vaults-governance/internal/governance"
	"github.com/vaultshq/vaults-governance/internal/graph"
	"github.com/vaultshq/vaults-governance/internal/identity"
	"github.com/vaultshq/vaults-governance/internal/ingest"
	"github.com/vaultshq/vaults-governance/internal/logger"
	"github.com/vaultshq/vaults-governance/internal/retry"
	"github.com/vaultshq/vaults-governance/internal/store"
)

// Run starts the ingestion service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("ingestion-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("blob_driver", cfg.BlobDriver).
		Int("http_port", cfg.HTTPPort).
		Str("graph_base_url", cfg.GraphBaseURL).
		Msg("Ingestion service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, orch, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}

	router := buildRouter(st, orch, cfg, log)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs the store, upstream clients, and orchestrator.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, *ingest.Orchestrator, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, err
	}

	var tokens identity.TokenSource = identity.Static("")
	if cfg.TokenEndpoint != "" {
		tokens = identity.NewClientCredentials(cfg.TokenEndpoint, cfg.ClientID, cfg.ClientSecret, cfg.TokenScope)
	}

	blobs, err := factory.NewBlobStore(cfg, tokens)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Blob store unavailable")
		return nil, nil, err
	}

	policy := retry.Default()
	if cfg.RetryMaxAttempts > 0 {
		policy.MaxAttempts = cfg.RetryMaxAttempts
	}

	client := graph.NewClient(cfg.GraphBaseURL, tokens, log)
	users := graph.NewUserEnumerator(client, cfg.UserPageSize, policy)
	fetcher := graph.NewInteractionFetcher(client, cfg.InteractionPageSize, policy)
	source := ingest.SourceFunc(func(userID string, since time.Time) ingest.EventPager {
		return fetcher.InteractionsSince(userID, since)
	})
	writer := ingest.NewDualWriter(st.Conversations(), blobs)

	orch := ingest.NewOrchestrator(users, source, writer, st.SyncStates(), log)
	return st, orch, nil
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(st store.Store, orch *ingest.Orchestrator, cfg *config.Config, log zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.New(log))

	ingestion := api.NewIngestionHandler(orch, st.SyncStates(), st.Conversations(), cfg.DefaultTenantID, log)
	root.HandleFunc("/api/ingestion/sync", ingestion.TriggerSync).Methods("POST")
	root.HandleFunc("/api/ingestion/status", ingestion.GetStatus).Methods("GET")
	root.HandleFunc("/api/ingestion/conversations", ingestion.ListConversations).Methods("GET")
	root.HandleFunc("/api/ingestion/conversations/{conversationId}", ingestion.GetConversation).Methods("GET")

	gov := api.NewGovernanceHandler(governance.NewScorer(), log)
	root.HandleFunc("/api/governance/dlp/assess-risk", gov.AssessRisk).Methods("POST")

	var pinger api.HealthPinger
	if p, ok := st.(api.HealthPinger); ok {
		pinger = p
	}
	health := api.NewHealthHandler(pinger)
	root.HandleFunc("/api/health", health.CheckHealth).Methods("GET")

	return root
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// sync passes hold the connection while they run, possibly for minutes
		WriteTimeout: 0,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
