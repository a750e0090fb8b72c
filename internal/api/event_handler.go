package api

import (
	"net/http"

	"SportsCatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EventHandler 赛事接口
type EventHandler struct {
	eventService *service.EventService
	logger       *logrus.Logger
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(svc *service.EventService, logger *logrus.Logger) *EventHandler {
	return &EventHandler{
		eventService: svc,
		logger:       logger,
	}
}

// CreateEvent POST /events/，sport_id 不存在返回 400
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req EventCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	event := req.toModel()
	if err := h.eventService.CreateEvent(c.Request.Context(), event); err != nil {
		respondError(c, h.logger, "CreateEvent", err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// UpdateEvent PUT /events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req EventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	event, err := h.eventService.UpdateEvent(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		respondError(c, h.logger, "UpdateEvent", err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// GetEvent GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "GetEvent", err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// ListEvents GET /events，附带选项
func (h *EventHandler) ListEvents(c *gin.Context) {
	list, err := h.eventService.ListEvents(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "ListEvents", err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(list))
}

// SearchEvents POST /events/search
func (h *EventHandler) SearchEvents(c *gin.Context) {
	f, err := bindFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.eventService.SearchEvents(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, "SearchEvents", err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(list))
}
