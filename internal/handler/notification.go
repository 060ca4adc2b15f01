package handler

import (
	"net/http"

	"github.com/segyhp/xp-lending/pkg/response"
)

type NotificationHandler struct {
	service NotificationService
}

func NewNotificationHandler(service NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.service.List(r.Context(), CurrentUser(r.Context()).ID, queryInt(r, "limit"))
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := pathUUID(r, "notificationId")
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	if err := h.service.MarkRead(r.Context(), CurrentUser(r.Context()).ID, notificationID); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{"id": notificationID.String(), "read": true})
}
