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

	"github.com/gin-gonic/gin"

	"friendcircle/config"
	"friendcircle/database"
	"friendcircle/handlers"
	"friendcircle/logger"
	"friendcircle/middleware"
	"friendcircle/session"
	"friendcircle/store"
	"friendcircle/websocket"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := realMain(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func realMain() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.CreateTables(ctx, db); err != nil {
		return err
	}

	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	hub := websocket.NewHub(rdb, log)
	if err := hub.Start(ctx); err != nil {
		return err
	}

	users := store.NewUserStore(db)
	friends := store.NewFriendshipStore(db)
	manager := session.NewManager(users, session.NewRedisStore(rdb), cfg.SecretKey, cfg.SessionTTL)

	h := &handlers.Handler{
		Users:        users,
		Posts:        store.NewPostStore(db),
		Friends:      friends,
		Feed:         store.NewFeedStore(db),
		Sessions:     manager,
		Notifier:     hub,
		Logger:       log,
		SecureCookie: cfg.SecureCookie,
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           newRouter(cfg, log, h, manager, hub.HandleWebSocket),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("server starting", "addr", srv.Addr)
	return Run(ctx, srv, nil)
}

func newRouter(cfg config.Config, log *slog.Logger, h *handlers.Handler, auth middleware.Authenticator, ws gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins()))

	handlers.RegisterRoutes(r, h, middleware.AuthMiddleware(auth), ws)
	return r
}

type ListenFunc func(srv *http.Server) error

var defaultListen ListenFunc = func(srv *http.Server) error {
	return srv.ListenAndServe()
}

// Run serves until ctx is cancelled or the listener fails, then drains
// in-flight requests.
func Run(ctx context.Context, srv *http.Server, listen ListenFunc) error {
	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
