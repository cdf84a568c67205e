package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KhanhRomVN/foocipe-user-service/internal/application/notification"
	"github.com/KhanhRomVN/foocipe-user-service/internal/domain"
)

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.CodeTokenInvalid, "invalid token")
		return
	}
	list, err := h.svc.ListUnread(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": list})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.CodeTokenInvalid, "invalid token")
		return
	}
	notificationID := chi.URLParam(r, "notificationID")
	if notificationID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeMissingFields, "notification id is required")
		return
	}
	if err := h.svc.MarkAsRead(r.Context(), userID, notificationID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notification marked as read"})
}
