package api

import (
	"net/http"

	"SportsCatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SelectionHandler 选项接口；写入会级联更新赛事与运动的 active
type SelectionHandler struct {
	selectionService *service.SelectionService
	logger           *logrus.Logger
}

// NewSelectionHandler 创建 SelectionHandler
func NewSelectionHandler(svc *service.SelectionService, logger *logrus.Logger) *SelectionHandler {
	return &SelectionHandler{
		selectionService: svc,
		logger:           logger,
	}
}

// CreateSelection POST /selections/
func (h *SelectionHandler) CreateSelection(c *gin.Context) {
	var req SelectionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	selection := req.toModel()
	if err := h.selectionService.CreateSelection(c.Request.Context(), selection); err != nil {
		respondError(c, h.logger, "CreateSelection", err)
		return
	}
	c.JSON(http.StatusCreated, selection)
}

// UpdateSelection PUT /selections/:id
func (h *SelectionHandler) UpdateSelection(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req SelectionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	selection, err := h.selectionService.UpdateSelection(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		respondError(c, h.logger, "UpdateSelection", err)
		return
	}
	c.JSON(http.StatusOK, selection)
}

// GetSelection GET /selections/:id
func (h *SelectionHandler) GetSelection(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	selection, err := h.selectionService.GetSelection(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "GetSelection", err)
		return
	}
	c.JSON(http.StatusOK, selection)
}

// ListSelections GET /selections
func (h *SelectionHandler) ListSelections(c *gin.Context) {
	list, err := h.selectionService.ListSelections(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "ListSelections", err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(list))
}

// SearchSelections POST /selections/search
func (h *SelectionHandler) SearchSelections(c *gin.Context) {
	f, err := bindFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.selectionService.SearchSelections(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, "SearchSelections", err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(list))
}
