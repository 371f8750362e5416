package handler

import (
	"net/http"

	"issp/internal/middleware"
	"issp/internal/service"
	"issp/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	statsGroup := router.Group("/api/statistics")
	{
		statsGroup.GET("/price-distribution", middleware.RequirePermission("dashboard.read"), h.GetPriceDistribution)
	}
}

// @Summary      Get price distribution
// @Description  Aggregates a cycle's approved line items into the five fixed price buckets for the dashboard chart
// @Tags         Statistics
// @Accept       json
// @Produce      json
// @Param        year_cycle query string true "Year cycle, e.g. 2024-2026"
// @Success      200 {object} response.Response{data=model.PriceDistribution}
// @Failure      400 {object} response.Response "Invalid year cycle"
// @Failure      401 {object} response.Response "Unauthorized"
// @Failure      500 {object} response.Response "Internal server error"
// @Security     BearerAuth
// @Router       /api/statistics/price-distribution [get]
func (h *StatisticsHandler) GetPriceDistribution(c *gin.Context) {
	yearCycle := c.Query("year_cycle")
	if yearCycle == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "year_cycle is required"))
		return
	}

	dist, err := h.statisticsService.GetPriceDistribution(c.Request.Context(), yearCycle)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dist))
}
