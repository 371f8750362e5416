package handler

import (
	"fmt"
	"io"
	"net/http"

	"issp/internal/middleware"
	"issp/internal/service"
	"issp/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	reports.Use(middleware.RequirePermission("reports.generate"))
	{
		reports.GET("/issp", h.GenerateISSPReport)
	}
}

// GenerateISSPReport handles GET /api/reports/issp
// @Summary      Generate the consolidated ISSP report
// @Description  Renders the cycle's grouped submissions and price distribution into a downloadable PDF
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        year_cycle query    string  true  "Year cycle, e.g. 2024-2026"
// @Success      200        {file}   file
// @Failure      400        {object} response.Response
// @Failure      502        {object} response.Response "Renderer failure"
// @Router       /api/reports/issp [get]
func (h *ReportHandler) GenerateISSPReport(c *gin.Context) {
	yearCycle := c.Query("year_cycle")
	if yearCycle == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "year_cycle is required"))
		return
	}

	userID := c.GetString("userID")
	body, filename, err := h.reportService.GenerateISSPReport(c.Request.Context(), yearCycle, userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, err.Error()))
		return
	}
	defer body.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}
