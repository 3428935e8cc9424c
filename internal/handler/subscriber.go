package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/partygames/waitlist/internal/handler/dto"
	"github.com/partygames/waitlist/internal/report"
	"github.com/partygames/waitlist/internal/service"
)

// SubscriberHandler handles the waitlist endpoints.
type SubscriberHandler struct {
	svc      *service.SubscriptionService
	logger   *slog.Logger
	reporter *report.Reporter
}

// NewSubscriberHandler creates a new SubscriberHandler.
func NewSubscriberHandler(svc *service.SubscriptionService, logger *slog.Logger, reporter *report.Reporter) *SubscriberHandler {
	return &SubscriberHandler{
		svc:      svc,
		logger:   logger,
		reporter: reporter,
	}
}

// Subscribe handles POST /api/subscribe.
func (h *SubscriberHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.SubscribeRequest(r.Context(), r.Body)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("subscriber_created",
		"subscriber_id", sub.ID,
		"email_domain", sub.EmailDomain(),
	)

	writeJSON(w, http.StatusCreated, dto.ToSubscribeResponse(sub))
}

// List handles GET /api/subscribers.
func (h *SubscriberHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("internal_error", "operation", "list_subscribers", "error", err)
		h.reporter.CaptureError(err, map[string]string{"operation": "list_subscribers"})
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: dto.ErrInternal})
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSubscriberListResponse(subs))
}

// handleServiceError maps service errors to HTTP responses.
func (h *SubscriberHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		h.logger.Debug("subscription_invalid", "error", err)
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   dto.ErrInvalidEmail,
			Message: dto.MsgInvalidEmail,
		})
	case errors.Is(err, service.ErrAlreadySubscribed):
		h.logger.Info("subscription_duplicate")
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{
			Error:   dto.ErrAlreadySubscribed,
			Message: dto.MsgAlreadySubscribed,
		})
	default:
		h.logger.Error("internal_error", "operation", "subscribe", "error", err)
		h.reporter.CaptureError(err, map[string]string{"operation": "subscribe"})
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error:   dto.ErrInternal,
			Message: dto.MsgInternal,
		})
	}
}
