package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/raseedapp/go-raseed/pkg/audio"
	"github.com/raseedapp/go-raseed/pkg/chat"
	"github.com/raseedapp/go-raseed/pkg/hub"
	"github.com/raseedapp/go-raseed/pkg/voice"
)

// messageEvent is the websocket frame for an appended chat entry.
type messageEvent struct {
	Type    string       `json:"type"`
	Message chat.Message `json:"message"`
}

// noticeEvent is the websocket frame for a transient notice.
type noticeEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PostMessageRequest is the body for typed messages.
type PostMessageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleGetMessages(c *fiber.Ctx) error {
	return c.JSON(s.log.Messages())
}

func (s *Server) handlePostMessage(c *fiber.Ctx) error {
	var req PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required"})
	}
	s.submit.Submit(text)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

func (s *Server) handleSpeakMessage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid message id"})
	}
	msg, ok := s.log.Get(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "message not found"})
	}
	if err := s.voicectl.Speak(msg.Text); err != nil {
		return voiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "speaking"})
}

func (s *Server) handleVoiceState(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"state": s.voicectl.State().String()})
}

func (s *Server) handleVoiceToggle(c *fiber.Ctx) error {
	if err := s.voicectl.Toggle(); err != nil {
		return voiceError(c, err)
	}
	return c.JSON(fiber.Map{"state": s.voicectl.State().String()})
}

func (s *Server) handleVoiceStop(c *fiber.Ctx) error {
	if err := s.voicectl.Stop(); err != nil {
		return voiceError(c, err)
	}
	return c.JSON(fiber.Map{"state": s.voicectl.State().String()})
}

// voiceError maps orchestrator errors to HTTP statuses.
func voiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, voice.ErrBusy), errors.Is(err, audio.ErrPlaybackBusy):
		status = fiber.StatusConflict
	case errors.Is(err, voice.ErrPermissionDenied):
		status = fiber.StatusForbidden
	case errors.Is(err, audio.ErrNoAudio):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, voice.ErrClosed):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// handleMessagesWS serves the live message stream.
func (s *Server) handleMessagesWS(c *websocket.Conn) {
	// Replay history before joining the broadcast stream.
	for _, m := range s.log.Messages() {
		if err := c.WriteJSON(messageEvent{Type: "message", Message: m}); err != nil {
			c.Close()
			return
		}
	}
	client := hub.NewClient(s.msgHub, c)
	client.Run()
}
