package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/Dospalko/roomsplit/internal/auth"
	"github.com/Dospalko/roomsplit/internal/httpapi"
	"github.com/Dospalko/roomsplit/internal/middleware"
	"github.com/Dospalko/roomsplit/internal/service"
	"github.com/Dospalko/roomsplit/internal/storage/sqlite"
	"github.com/Dospalko/roomsplit/pkg/logging"
)

const (
	defaultPort   = "8080"
	defaultDBPath = "data/roomsplit.db"

	tokenDuration   = 24 * time.Hour
	shutdownTimeout = 10 * time.Second

	// Auth endpoints allow 10 attempts per IP per minute.
	authRateLimit  = 10
	authRateWindow = time.Minute
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()

	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := envOr("PORT", defaultPort)
	dbPath := envOr("DB_PATH", defaultDBPath)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	jwtManager := auth.NewJWTManager(jwtSecret, tokenDuration)
	access := service.NewAccessControl(store)
	rooms := service.NewRoomService(store, access)
	bills := service.NewBillService(store, access)

	limiter := middleware.NewRateLimiter(authRateLimit, authRateWindow)
	defer limiter.Close()

	api := httpapi.NewRouter(httpapi.Services{
		Auth:      service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager),
		Rooms:     rooms,
		Bills:     bills,
		Payments:  service.NewPaymentTracker(store, access),
		Summaries: service.NewSummaryAggregator(bills, rooms, access),
		Invites:   service.NewInviteService(store, access),
	}, jwtManager, limiter)

	mux := http.NewServeMux()
	mux.Handle("/api/", api)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	handler := middleware.Logging(middleware.Metrics(middleware.CORS(mux)))

	server := &http.Server{
		Addr: ":" + port,
		// h2c lets HTTP/2 clients connect without TLS; a reverse proxy
		// terminates TLS in front of this server.
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "port", port, "db_path", dbPath)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
