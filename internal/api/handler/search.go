package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/expressionlab/moodmirror/internal/domain"
	"github.com/expressionlab/moodmirror/internal/service"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
)

// SearchService interface for the service
type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) (*domain.SearchResult, error)
	GetSession(ctx context.Context, id uuid.UUID) (*service.SessionDetail, error)
}

// SearchHandler handles emotion search requests
type SearchHandler struct {
	service SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new SearchHandler instance
func NewSearchHandler(service SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		logger:  logger,
	}
}

// SearchRequest is the request body for the search endpoint
type SearchRequest struct {
	SessionID           string `json:"session_id"`
	UserName            string `json:"user_name"`
	CapturedImage       string `json:"captured_image"`
	PrivacyPolicyAgreed bool   `json:"privacy_policy_agreed"`
	Timestamp           string `json:"timestamp"`
}

// Search POST /api/v1/search - run the full emotion search pipeline
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	if strings.TrimSpace(req.UserName) == "" {
		return domain.ErrValidationFailed.WithError(errors.New("user_name is required"))
	}

	image, err := decodeCapturedImage(req.CapturedImage)
	if err != nil {
		return err
	}

	input := service.SearchInput{
		UserName: strings.TrimSpace(req.UserName),
		Image:    image,
		Consent:  req.PrivacyPolicyAgreed,
		ClientIP: c.IP(),
	}

	// An unparseable client session_id falls back to a server-generated one.
	if req.SessionID != "" {
		if id, err := uuid.Parse(req.SessionID); err == nil {
			input.SessionID = &id
		}
	}

	result, err := h.service.Search(c.Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// GetSession GET /api/v1/sessions/:id - fetch a session with its records and aggregate
func (h *SearchHandler) GetSession(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("id must be a valid UUID"))
	}

	detail, err := h.service.GetSession(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(detail)
}

// decodeCapturedImage decodes a base64 payload, stripping an optional
// data-URL prefix (data:image/jpeg;base64,...).
func decodeCapturedImage(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, domain.ErrInvalidImage.WithError(errors.New("captured_image is empty"))
	}

	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, domain.ErrInvalidImage.WithError(errors.New("malformed data URL"))
		}
		payload = payload[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	if len(data) == 0 || len(data) > maxImageSize {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	return data, nil
}
