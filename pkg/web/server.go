// Package web exposes the chat and voice controls over HTTP and websocket.
package web

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/raseedapp/go-raseed/internal/metrics"
	"github.com/raseedapp/go-raseed/pkg/chat"
	"github.com/raseedapp/go-raseed/pkg/hub"
	"github.com/raseedapp/go-raseed/pkg/voice"
)

// VoiceController is the subset of the voice orchestrator the handlers use.
type VoiceController interface {
	Toggle() error
	Stop() error
	Speak(text string) error
	State() voice.State
}

// Submitter accepts typed user messages. Satisfied by *chat.Bridge.
type Submitter interface {
	Submit(text string)
}

// Server is the HTTP/websocket front end.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	log      *chat.Log
	submit   Submitter
	voicectl VoiceController

	msgHub *hub.Hub
}

// NewServer wires the routes over the given collaborators. Subscribing the
// returned server to log broadcasts happens here; callers only Start it.
func NewServer(addr string, log *chat.Log, submit Submitter, voicectl VoiceController, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:     addr,
		logger:   logger.With("component", "web"),
		log:      log,
		submit:   submit,
		voicectl: voicectl,
		msgHub:   hub.New("messages", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Raseed Voice Assistant",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	if m != nil {
		app.Use(func(c *fiber.Ctx) error {
			err := c.Next()
			m.WebRequests.WithLabelValues(
				c.Method(),
				c.Route().Path,
				strconv.Itoa(c.Response().StatusCode()),
			).Inc()
			return err
		})
	}

	app.Get("/healthz", s.handleHealth)

	api := app.Group("/api")
	api.Get("/messages", s.handleGetMessages)
	api.Post("/messages", s.handlePostMessage)
	api.Post("/messages/:id/speak", s.handleSpeakMessage)
	api.Get("/voice/state", s.handleVoiceState)
	api.Post("/voice/toggle", s.handleVoiceToggle)
	api.Post("/voice/stop", s.handleVoiceStop)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleMessagesWS))

	s.app = app

	// Every appended entry fans out to connected clients.
	s.log.Subscribe(func(m chat.Message) {
		if err := s.msgHub.BroadcastJSON(messageEvent{Type: "message", Message: m}); err != nil {
			s.logger.Warn("broadcast failed", "error", err)
		}
	})
	go s.msgHub.Run()

	return s
}

// Start serves HTTP on the configured address. It blocks.
func (s *Server) Start() error {
	s.logger.Info("web server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Notify broadcasts a transient notice to connected clients. It satisfies
// the voice package's Notifier interface.
func (s *Server) Notify(text string) {
	if err := s.msgHub.BroadcastJSON(noticeEvent{Type: "notice", Text: text}); err != nil {
		s.logger.Warn("notice broadcast failed", "error", err)
	}
}
