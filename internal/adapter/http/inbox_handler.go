package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carenow/queue-notify/internal/app"
)

type InboxHandler struct {
	service *app.InboxService
}

func NewInboxHandler(service *app.InboxService) *InboxHandler {
	return &InboxHandler{service: service}
}

func (h *InboxHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification id"})
		return
	}

	notification, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewNotificationResponse(notification))
}

func (h *InboxHandler) ListByRecipient(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notifications, err := h.service.ListByRecipient(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewNotificationListResponse(notifications))
}

func (h *InboxHandler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification id"})
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		handleDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
