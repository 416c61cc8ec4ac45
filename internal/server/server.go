package server

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/redis/go-redis/v9"

    "github.com/ucid-labs/ucid/internal/config"
    "github.com/ucid-labs/ucid/internal/kvstore"
    "github.com/ucid-labs/ucid/internal/metrics"
    "github.com/ucid-labs/ucid/internal/mnemonic"
    "github.com/ucid-labs/ucid/internal/notification"
    "github.com/ucid-labs/ucid/internal/registry"
    "github.com/ucid-labs/ucid/internal/routes"
    "github.com/ucid-labs/ucid/internal/session"
    "github.com/ucid-labs/ucid/internal/uid"
    "github.com/ucid-labs/ucid/internal/wallet"
    "github.com/ucid-labs/ucid/internal/workflow"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
    app           *fiber.App
    cfg           config.Config
    session       *session.Store
    notifications *notification.Board
}

// New builds every component on top of store and delegates route wiring to
// routes.Setup. cache may be nil.
func New(ctx context.Context, cfg config.Config, store kvstore.Store, cache *redis.Client, logger *slog.Logger) (*Server, error) {
    deps, err := Wire(ctx, cfg, store, cache, logger)
    if err != nil {
        return nil, err
    }

    app := fiber.New(fiber.Config{
        AppName:      cfg.AppName,
        ReadTimeout:  30 * time.Second,
        WriteTimeout: 30 * time.Second,
    })

    if err := routes.Setup(app, deps); err != nil {
        _ = deps.Session.Close(ctx)
        deps.Notifications.Close()
        return nil, err
    }

    return &Server{app: app, cfg: cfg, session: deps.Session, notifications: deps.Notifications}, nil
}

// Wire assembles the registry, session and workflows sharing one store.
func Wire(ctx context.Context, cfg config.Config, store kvstore.Store, cache *redis.Client, logger *slog.Logger) (routes.Deps, error) {
    m := metrics.New()
    reg := registry.NewService(registry.NewStoreRepository(store, cfg.Namespace), logger, m)
    seeds := mnemonic.New()

    sess, err := session.Open(ctx, session.Deps{
        KV:        store,
        Registry:  reg,
        Seeds:     seeds,
        NewUID:    uid.New,
        Namespace: cfg.Namespace,
        Logger:    logger,
        Metrics:   m,
    })
    if err != nil {
        return routes.Deps{}, fmt.Errorf("open session: %w", err)
    }

    codes := workflow.NewRevealCodes(store, cfg.Namespace)
    security := workflow.NewSecurity(codes, sess, logger)
    gate, err := workflow.NewGate(cfg.ActionTokenSecret, cfg.ActionTokenTTL, security,
        workflow.NewSimulatedFaceScanner(cfg.FaceScanSuccessRate, cfg.FaceScanDelay), logger)
    if err != nil {
        _ = sess.Close(ctx)
        return routes.Deps{}, fmt.Errorf("build action gate: %w", err)
    }
    board := notification.NewBoard(cfg.NotificationTTL, notification.NewLoggerNotifier(logger))

    return routes.Deps{
        Cfg:           cfg,
        Store:         store,
        Cache:         cache,
        Logger:        logger,
        Metrics:       m,
        Registry:      reg,
        Session:       sess,
        Registration:  workflow.NewRegistration(sess, seeds, codes, logger, m),
        Wallets:       workflow.NewWalletFlow(sess, reg, gate, board, logger, m),
        Gate:          gate,
        Security:      security,
        Detector:      wallet.NewStaticDetector(cfg.InstalledProviders...),
        Notifications: board,
    }, nil
}

// App exposes the Fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
    return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
    return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server, then drains pending registry
// writes of the session.
func (s *Server) Shutdown(ctx context.Context) error {
    httpErr := s.app.ShutdownWithContext(ctx)
    sessErr := s.session.Close(ctx)
    s.notifications.Close()
    return errors.Join(httpErr, sessErr)
}
