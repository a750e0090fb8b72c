package api

import (
	"net/http"

	"SportsCatalog/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Sports     *SportHandler
	Events     *EventHandler
	Selections *SelectionHandler
}

// NewRouter 创建 gin 引擎：恢复、访问日志、业务路由、/metrics、/healthz
func NewRouter(logger *logrus.Logger, m *metrics.Metrics, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))
	RegisterRoutes(r, h)

	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

// RegisterRoutes 注册运动、赛事、选项路由
func RegisterRoutes(r gin.IRouter, h Handlers) {
	sports := r.Group("/sports")
	sports.POST("/", h.Sports.CreateSport)
	sports.PUT("/:id", h.Sports.UpdateSport)
	sports.POST("/search", h.Sports.SearchSports)
	sports.GET("/:id", h.Sports.GetSport)
	r.GET("/sports", h.Sports.ListSports)

	events := r.Group("/events")
	events.POST("/", h.Events.CreateEvent)
	events.PUT("/:id", h.Events.UpdateEvent)
	events.POST("/search", h.Events.SearchEvents)
	events.GET("/:id", h.Events.GetEvent)
	r.GET("/events", h.Events.ListEvents)

	selections := r.Group("/selections")
	selections.POST("/", h.Selections.CreateSelection)
	selections.PUT("/:id", h.Selections.UpdateSelection)
	selections.POST("/search", h.Selections.SearchSelections)
	selections.GET("/:id", h.Selections.GetSelection)
	r.GET("/selections", h.Selections.ListSelections)
}
