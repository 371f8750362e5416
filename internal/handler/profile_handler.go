package handler

import (
	"net/http"

	"issp/internal/middleware"
	"issp/internal/service"
	"issp/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profiles := router.Group("/api/profiles")
	{
		profiles.GET("/:unit/:cycle/:page", middleware.RequirePermission("profiles.read"), h.GetSection)
		profiles.PUT("/:unit/:cycle/:page", middleware.RequirePermission("profiles.write"), h.SaveSection)
		profiles.PATCH("/:unit/:cycle/:page", middleware.RequirePermission("profiles.write"), h.SaveDraft)
		profiles.POST("/:unit/:cycle/:page/navigate", middleware.RequirePermission("profiles.write"), h.Navigate)
	}
}

type navigateDTO struct {
	Forward bool `json:"forward"`
}

// GetSection handles GET /api/profiles/:unit/:cycle/:page
// @Summary      Get a profile section
// @Description  Loads one wizard page of a unit's profile with table fields padded to their fixed lengths
// @Tags         profiles
// @Produce      json
// @Security     BearerAuth
// @Param        unit   path     string  true  "Unit name"
// @Param        cycle  path     string  true  "Year cycle"
// @Param        page   path     string  true  "Page key (A-E)"
// @Success      200    {object} response.Response{data=service.ProfileSectionResponse}
// @Failure      400    {object} response.Response
// @Router       /api/profiles/{unit}/{cycle}/{page} [get]
func (h *ProfileHandler) GetSection(c *gin.Context) {
	section, err := h.profileService.GetSection(c.Request.Context(), c.Param("unit"), c.Param("cycle"), c.Param("page"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, section))
}

// SaveSection handles PUT /api/profiles/:unit/:cycle/:page
// @Summary      Save a profile section
// @Description  Persists one wizard page immediately, superseding any pending autosave
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        unit     path     string                  true  "Unit name"
// @Param        cycle    path     string                  true  "Year cycle"
// @Param        page     path     string                  true  "Page key (A-E)"
// @Param        payload  body     service.SaveSectionDTO  true  "Section fields"
// @Success      200      {object} response.Response{data=service.ProfileSectionResponse}
// @Failure      400      {object} response.Response
// @Router       /api/profiles/{unit}/{cycle}/{page} [put]
func (h *ProfileHandler) SaveSection(c *gin.Context) {
	var req service.SaveSectionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	section, err := h.profileService.SaveSection(c.Request.Context(), c.Param("unit"), c.Param("cycle"), c.Param("page"), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, section))
}

// SaveDraft handles PATCH /api/profiles/:unit/:cycle/:page
// @Summary      Queue a draft save
// @Description  Schedules a debounced autosave of the section; the write lands after the idle window elapses
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        unit     path     string                  true  "Unit name"
// @Param        cycle    path     string                  true  "Year cycle"
// @Param        page     path     string                  true  "Page key (A-E)"
// @Param        payload  body     service.SaveSectionDTO  true  "Section fields"
// @Success      202      {object} response.Response
// @Failure      400      {object} response.Response
// @Router       /api/profiles/{unit}/{cycle}/{page} [patch]
func (h *ProfileHandler) SaveDraft(c *gin.Context) {
	var req service.SaveSectionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	h.profileService.SaveDraft(c.Param("unit"), c.Param("cycle"), c.Param("page"), req.Fields)

	c.JSON(http.StatusAccepted, response.Success(http.StatusAccepted, "Draft queued"))
}

// Navigate handles POST /api/profiles/:unit/:cycle/:page/navigate
// @Summary      Navigate the profile wizard
// @Description  Flushes any pending draft of the current page, then resolves the next or previous page
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        unit     path     string       true  "Unit name"
// @Param        cycle    path     string       true  "Year cycle"
// @Param        page     path     string       true  "Page key (A-E)"
// @Param        payload  body     navigateDTO  true  "Direction"
// @Success      200      {object} response.Response{data=object}
// @Failure      400      {object} response.Response
// @Router       /api/profiles/{unit}/{cycle}/{page}/navigate [post]
func (h *ProfileHandler) Navigate(c *gin.Context) {
	var req navigateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	next, err := h.profileService.Navigate(c.Request.Context(), c.Param("unit"), c.Param("cycle"), c.Param("page"), req.Forward)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"page": next}))
}
