package handler

import (
	"net/http"
	"strconv"

	"issp/internal/middleware"
	"issp/internal/service"
	"issp/pkg/response"

	"github.com/gin-gonic/gin"
)

type UnitGroupHandler struct {
	unitGroupService service.UnitGroupService
}

func NewUnitGroupHandler(unitGroupService service.UnitGroupService) *UnitGroupHandler {
	return &UnitGroupHandler{unitGroupService: unitGroupService}
}

func (h *UnitGroupHandler) RegisterRoutes(router *gin.RouterGroup) {
	groups := router.Group("/api/unit-groups")
	groups.Use(middleware.RequirePermission("units.read"))
	{
		groups.GET("", h.ListUnitGroups)
		groups.GET("/:unit", h.GetUnitGroup)
	}
}

// ListUnitGroups handles GET /api/unit-groups
// @Summary      List unit submission groups
// @Description  Groups a cycle's requests per unit with derived display statuses, filtered and paged
// @Tags         units
// @Produce      json
// @Security     BearerAuth
// @Param        year_cycle query    string  true   "Year cycle, e.g. 2024-2026"
// @Param        query      query    string  false  "Free-text filter on unit name or campus"
// @Param        status     query    string  false  "Derived status label to match; 'all' disables"
// @Param        page       query    int     false  "Page number (default 1)"
// @Success      200        {object} response.Response{data=service.UnitGroupPage}
// @Failure      400        {object} response.Response
// @Router       /api/unit-groups [get]
func (h *UnitGroupHandler) ListUnitGroups(c *gin.Context) {
	yearCycle := c.Query("year_cycle")
	if yearCycle == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "year_cycle is required"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	filter := service.UnitGroupFilter{
		Query:  c.Query("query"),
		Status: c.DefaultQuery("status", service.StatusFilterAll),
		Page:   page,
	}

	result, err := h.unitGroupService.ListUnitGroups(c.Request.Context(), yearCycle, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetUnitGroup handles GET /api/unit-groups/:unit
// @Summary      Get one unit's group
// @Description  Retrieves a single unit's grouped requests and derived status for a cycle
// @Tags         units
// @Produce      json
// @Security     BearerAuth
// @Param        unit       path     string  true  "Unit name"
// @Param        year_cycle query    string  true  "Year cycle"
// @Success      200        {object} response.Response{data=model.UnitGroup}
// @Failure      404        {object} response.Response
// @Router       /api/unit-groups/{unit} [get]
func (h *UnitGroupHandler) GetUnitGroup(c *gin.Context) {
	group, err := h.unitGroupService.GetUnitGroup(c.Request.Context(), c.Param("unit"), c.Query("year_cycle"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, group))
}
