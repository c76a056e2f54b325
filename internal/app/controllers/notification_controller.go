package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/websocket"
)

// NotificationController handles the caller's inbox
type NotificationController struct {
	notificationService *services.NotificationService
	stream              *websocket.Handler
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService *services.NotificationService, stream *websocket.Handler) *NotificationController {
	return &NotificationController{notificationService: notificationService, stream: stream}
}

// List returns a page of the caller's notifications
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param unread query bool false "Only unread"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	var filter dto.NotificationFilterRequest
	if !bindQuery(ctx, &filter) {
		return
	}
	page, err := c.notificationService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// UnreadCount returns the number of unread notifications
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse}
// @Router /notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	n, err := c.notificationService.UnreadCount(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.UnreadCountResponse{Unread: n}, "")
}

// MarkRead marks one notification read; repeating it is harmless
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse{data=models.Notification}
// @Failure 404 {object} dto.ErrorResponse "Notification not found"
// @Router /notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	n, err := c.notificationService.MarkRead(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, n, "")
}

// MarkAllRead marks every notification read
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MarkAllReadResponse}
// @Router /notifications/read-all [post]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	n, err := c.notificationService.MarkAllRead(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.MarkAllReadResponse{Updated: n}, "")
}

// Stream upgrades to a WebSocket that receives the caller's new notifications
// @Summary Live notification stream
// @Description Upgrades to a WebSocket; every notification stored for the caller is pushed as {"type":"notification","data":{...}}
// @Tags notifications
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /notifications/stream [get]
func (c *NotificationController) Stream(ctx *gin.Context) {
	actor, ok := actorOf(ctx)
	if !ok {
		return
	}
	if c.stream == nil {
		ctx.AbortWithStatus(http.StatusNotImplemented)
		return
	}
	// The upgrader writes its own error response.
	_ = c.stream.Serve(ctx.Writer, ctx.Request, actor.UserID)
}
