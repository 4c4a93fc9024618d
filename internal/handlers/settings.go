package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/vwmedia/siteutil/internal/services"
	"github.com/vwmedia/siteutil/internal/settings"
	apperrors "github.com/vwmedia/siteutil/pkg/errors"
	"github.com/vwmedia/siteutil/pkg/response"
)

// SettingsHandler exposes the stored site settings and the SMTP test mail.
type SettingsHandler struct {
	settings  *services.SettingsService
	testEmail *services.TestEmailService
}

// NewSettingsHandler constructs a handler once dependencies are supplied.
func NewSettingsHandler(settingsSvc *services.SettingsService, testEmail *services.TestEmailService) (*SettingsHandler, error) {
	if settingsSvc == nil {
		return nil, errors.New("settings handler: settings service is required")
	}
	if testEmail == nil {
		return nil, errors.New("settings handler: test email service is required")
	}
	return &SettingsHandler{settings: settingsSvc, testEmail: testEmail}, nil
}

// GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	record, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "load settings"))
		return
	}
	response.Success(c, http.StatusOK, record.Masked())
}

// POST /api/settings
//
// Accepts the settings form either urlencoded or as a flat JSON object. Field
// diagnostics come back as notices; the record is saved regardless.
func (h *SettingsHandler) Update(c *gin.Context) {
	input, err := readSettingsInput(c)
	if err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	record, verrs, err := h.settings.Update(c.Request.Context(), input)
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "save settings"))
		return
	}

	response.SuccessWithNotices(c, http.StatusOK, record.Masked(), settingsNotices(verrs))
}

type testEmailRequest struct {
	EmailAddr string `json:"email_addr" validate:"required,email"`
}

// POST /api/settings/smtp/test
func (h *SettingsHandler) SendTestEmail(c *gin.Context) {
	var payload testEmailRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	result := h.testEmail.Send(c.Request.Context(), payload.EmailAddr)
	response.Success(c, http.StatusOK, result)
}

func readSettingsInput(c *gin.Context) (settings.RawInput, error) {
	if c.ContentType() == binding.MIMEJSON {
		var payload map[string]any
		if err := c.ShouldBindJSON(&payload); err != nil {
			return nil, errors.New("invalid JSON payload")
		}
		return rawFromJSON(payload)
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, errors.New("invalid form payload")
	}
	return settings.FromValues(c.Request.PostForm), nil
}

// rawFromJSON flattens a JSON object into form semantics: null is treated as
// not submitted, booleans become "1" or "0", numbers keep their literal form.
func rawFromJSON(payload map[string]any) (settings.RawInput, error) {
	input := make(settings.RawInput, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			input[key] = v
		case bool:
			if v {
				input[key] = "1"
			} else {
				input[key] = "0"
			}
		case float64:
			input[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("field %s must be a scalar value", key)
		}
	}
	return input, nil
}

func settingsNotices(verrs settings.ValidationErrors) []response.Notice {
	if len(verrs) == 0 {
		return nil
	}
	notices := make([]response.Notice, 0, len(verrs))
	for _, verr := range verrs {
		notices = append(notices, response.Notice{
			Field:   verr.Field,
			Code:    verr.Code,
			Message: verr.Message,
			Type:    "error",
		})
	}
	return notices
}
