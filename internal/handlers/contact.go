package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vwmedia/siteutil/internal/services"
	apperrors "github.com/vwmedia/siteutil/pkg/errors"
	"github.com/vwmedia/siteutil/pkg/response"
)

const (
	contactMissingContent = "Please supply all information."
	contactEmailInvalid   = "Email Address Invalid."
	contactMessageSent    = "Thanks! Your message has been sent."
)

var (
	errContactIncomplete = apperrors.New("CONTACT_INCOMPLETE", contactMissingContent, http.StatusBadRequest)
	errContactEmail      = apperrors.New("CONTACT_EMAIL_INVALID", contactEmailInvalid, http.StatusBadRequest)
	errContactDisabled   = apperrors.ErrUnavailable.WithMessage("Contact form is not configured")
)

// ContactHandler accepts public contact form submissions.
type ContactHandler struct {
	svc *services.ContactService
}

// NewContactHandler constructs the handler. A nil service leaves the form
// answering 503 until an admin address is configured.
func NewContactHandler(svc *services.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

// POST /contact
func (h *ContactHandler) Submit(c *gin.Context) {
	if h.svc == nil {
		response.Error(c, errContactDisabled)
		return
	}

	var input services.ContactInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, errContactIncomplete)
		return
	}

	err := h.svc.Submit(c.Request.Context(), input)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, gin.H{"type": "success", "message": contactMessageSent})
	case errors.Is(err, services.ErrContactIncomplete):
		response.Error(c, errContactIncomplete)
	case errors.Is(err, services.ErrContactEmailInvalid):
		response.Error(c, errContactEmail)
	default:
		response.Error(c, apperrors.ErrMailDelivery.WithInternal(err))
	}
}
