package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tbxark/bureaubot/agent"
	"github.com/tbxark/bureaubot/pdffill"
)

// Conversation is the part of the orchestrator the HTTP layer needs.
type Conversation interface {
	Handle(ctx context.Context, sessionID, message string) (*agent.Response, error)
	Reset(ctx context.Context, sessionID string) error
}

type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id" validate:"omitempty,max=128"`
}

type ChatResponse struct {
	Reply     string  `json:"reply"`
	SessionID string  `json:"session_id"`
	Stage     string  `json:"stage"`
	PDFPath   *string `json:"pdf_path"`
}

type ResetRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	app      *fiber.App
	conv     Conversation
	outDir   string
	validate *validator.Validate
}

type options struct {
	allowOrigins string
	gatherer     prometheus.Gatherer
	bodyLimit    int
	timeout      time.Duration
}

type Option func(*options)

// WithAllowOrigins sets the CORS allow list, "*" by default.
func WithAllowOrigins(origins string) Option {
	return func(o *options) { o.allowOrigins = origins }
}

// WithGatherer exposes the registry on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(o *options) { o.gatherer = g }
}

func WithBodyLimit(n int) Option {
	return func(o *options) { o.bodyLimit = n }
}

// WithTurnTimeout bounds one chat turn, including every model call in it.
func WithTurnTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func New(conv Conversation, outDir string, opts ...Option) *Server {
	o := options{allowOrigins: "*", bodyLimit: 1 << 20}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	s := &Server{
		conv:     conv,
		outDir:   outDir,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "bureaubot",
		BodyLimit:             o.bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: o.allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	api := s.app.Group("/api")
	api.Post("/chat", s.withTimeout(o.timeout, s.chat))
	api.Post("/reset", s.reset)
	api.Get("/download/:filename", s.download)
	api.Get("/health", s.health)
	if o.gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	slog.Info("HTTP server listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) withTimeout(d time.Duration, h fiber.Handler) fiber.Handler {
	if d <= 0 {
		return h
	}
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return h(c)
	}
}

func (s *Server) chat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Message = strings.TrimSpace(req.Message)
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Message cannot be empty")
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp, err := s.conv.Handle(c.UserContext(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyMessage) {
			return fiber.NewError(fiber.StatusBadRequest, "Message cannot be empty")
		}
		return err
	}
	out := ChatResponse{
		Reply:     resp.Reply,
		SessionID: resp.SessionID,
		Stage:     resp.Stage.String(),
	}
	if resp.ArtifactPath != "" {
		out.PDFPath = &resp.ArtifactPath
	}
	return c.JSON(out)
}

func (s *Server) reset(c *fiber.Ctx) error {
	var req ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}
	if err := s.conv.Reset(c.UserContext(), req.SessionID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "reset", "session_id": req.SessionID})
}

func (s *Server) download(c *fiber.Ctx) error {
	name := c.Params("filename")
	if !pdffill.SafeBase(name) {
		return fiber.NewError(fiber.StatusNotFound, "File not found")
	}
	path := filepath.Join(s.outDir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return fiber.NewError(fiber.StatusNotFound, "File not found")
	}
	return c.Download(path, name)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		slog.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(errorResponse{Error: msg})
}
