// Package api exposes receipt extraction, ledger import, auth and
// transaction endpoints over HTTP with fiber.
package api

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/insightdelivered/finance-tracker/internal/auth"
	"github.com/insightdelivered/finance-tracker/internal/extractor"
	"github.com/insightdelivered/finance-tracker/internal/models"
)

// Extractor pulls text out of an uploaded file on disk.
type Extractor interface {
	Extract(ctx context.Context, path string) (extractor.Result, error)
}

// Store is the persistence the auth and transaction routes need.
type Store interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	CreateTransactions(ctx context.Context, userID string, txs []models.Transaction) (int, error)
	ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) (models.TransactionPage, error)
	AllTransactions(ctx context.Context, userID, start, end string) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
}

// Config holds the HTTP layer settings.
type Config struct {
	Version            string
	StaticDir          string
	UploadLimit        int
	RateLimitPerMinute int
	CORSOrigins        string
}

// Server holds the handlers and their dependencies. Store and Tokens may be
// nil, in which case only the stateless endpoints are mounted.
type Server struct {
	cfg       Config
	extractor Extractor
	store     Store
	tokens    *auth.Tokens
	hasher    auth.Hasher
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithStore enables the auth and transaction routes.
func WithStore(st Store, tokens *auth.Tokens) Option {
	return func(s *Server) {
		s.store = st
		s.tokens = tokens
	}
}

// WithHasher overrides the password hasher.
func WithHasher(h auth.Hasher) Option {
	return func(s *Server) { s.hasher = h }
}

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics shares a metrics registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer builds a Server around ext.
func NewServer(cfg Config, ext Extractor, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		extractor: ext,
		hasher:    auth.NewHasher(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// App returns a fiber app with every route registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "finance-tracker " + s.cfg.Version,
		BodyLimit:             s.cfg.UploadLimit,
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(fiberrecover.New())
	app.Use(requestid.New())
	app.Use(s.requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
	}))

	s.RegisterRoutes(app)
	return app
}

// RegisterRoutes mounts the API on app.
func (s *Server) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", s.HandleHealth)
	app.Get("/metrics", s.metrics.Handler())

	limit := s.uploadLimiter()
	app.Post("/api/extract-receipt", limit, s.HandleExtractReceipt)
	app.Post("/api/upload-pdf-transactions", limit, auth.Optional(s.tokens), s.HandleUploadLedger)

	if s.store != nil && s.tokens != nil {
		authGroup := app.Group("/api/auth")
		authGroup.Post("/register", s.HandleRegister)
		authGroup.Post("/login", s.HandleLogin)

		txGroup := app.Group("/api/transactions", auth.Required(s.tokens))
		txGroup.Post("/", s.HandleCreateTransaction)
		txGroup.Get("/", s.HandleListTransactions)
		txGroup.Get("/all", s.HandleAllTransactions)
		txGroup.Get("/summary", s.HandleSummary)
		txGroup.Delete("/:id", s.HandleDeleteTransaction)
	}

	if s.cfg.StaticDir != "" {
		s.registerStatic(app)
	}
}

// registerStatic serves the web client and falls back to index.html for
// client-side routes.
func (s *Server) registerStatic(app *fiber.App) {
	app.Static("/", s.cfg.StaticDir)
	index := filepath.Join(s.cfg.StaticDir, "index.html")
	app.Get("/*", func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return fiber.ErrNotFound
		}
		if _, err := os.Stat(index); err != nil {
			return fiber.ErrNotFound
		}
		return c.SendFile(index)
	})
}

func (s *Server) uploadLimiter() fiber.Handler {
	if s.cfg.RateLimitPerMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        s.cfg.RateLimitPerMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many uploads, try again later")
		},
	})
}

// errorHandler renders every error as {"error": message}.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	} else {
		s.logger.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err,
		)
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		s.metrics.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		s.logger.Debug("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		)
		return err
	}
}

// userContext returns the request context for store and extractor calls.
func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
