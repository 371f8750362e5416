package handler

import (
	"net/http"

	"issp/internal/middleware"
	"issp/internal/service"
	"issp/pkg/pagination"
	"issp/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/api/notifications")
	notifications.Use(middleware.RequirePermission("notifications.read"))
	{
		notifications.GET("", h.ListNotifications)
		notifications.POST("/:id/read", h.MarkRead)
		notifications.POST("/read-all", h.MarkAllRead)
	}
}

// ListNotifications handles GET /api/notifications
// @Summary      List notifications
// @Description  Retrieves the caller's notifications, both personal and unit-wide ones
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unit   query    string  false  "Caller's unit for unit-wide notifications"
// @Param        page   query    int     false  "Page number (default 1)"
// @Param        limit  query    int     false  "Items per page (default 20)"
// @Success      200    {object} response.Response{data=object}
// @Failure      500    {object} response.Response
// @Router       /api/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	params := pagination.Parse(c)

	userID := c.GetString("userID")
	notifications, total, err := h.notificationService.List(c.Request.Context(), userID, c.Query("unit"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"total":         total,
		"page":          params.Page,
		"limit":         params.Limit,
	}))
}

// MarkRead handles POST /api/notifications/:id/read
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Notification marked read"))
}

// MarkAllRead handles POST /api/notifications/read-all
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unit  query     string  false  "Caller's unit for unit-wide notifications"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /api/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID, c.Query("unit")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "All notifications marked read"))
}
