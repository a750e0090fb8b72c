package api

import (
	"net/http"

	"SportsCatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SportHandler 运动接口
type SportHandler struct {
	sportService *service.SportService
	logger       *logrus.Logger
}

// NewSportHandler 创建 SportHandler
func NewSportHandler(svc *service.SportService, logger *logrus.Logger) *SportHandler {
	return &SportHandler{
		sportService: svc,
		logger:       logger,
	}
}

// CreateSport POST /sports/
func (h *SportHandler) CreateSport(c *gin.Context) {
	var req SportCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sport := req.toModel()
	if err := h.sportService.CreateSport(c.Request.Context(), sport); err != nil {
		respondError(c, h.logger, "CreateSport", err)
		return
	}
	c.JSON(http.StatusCreated, sport)
}

// UpdateSport PUT /sports/:id
func (h *SportHandler) UpdateSport(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req SportUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sport, err := h.sportService.UpdateSport(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		respondError(c, h.logger, "UpdateSport", err)
		return
	}
	c.JSON(http.StatusOK, sport)
}

// GetSport GET /sports/:id
func (h *SportHandler) GetSport(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	sport, err := h.sportService.GetSport(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "GetSport", err)
		return
	}
	c.JSON(http.StatusOK, sport)
}

// ListSports GET /sports，附带赛事与选项
func (h *SportHandler) ListSports(c *gin.Context) {
	list, err := h.sportService.ListSports(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "ListSports", err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(list))
}

// SearchSports POST /sports/search，支持 name_regex、min_active_events
func (h *SportHandler) SearchSports(c *gin.Context) {
	f, err := bindFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.sportService.SearchSports(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, "SearchSports", err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(list))
}

// orEmpty 空结果返回 []，不返回 null
func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
