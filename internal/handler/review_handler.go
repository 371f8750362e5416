package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"issp/internal/middleware"
	"issp/internal/service"
	"issp/pkg/response"

	"github.com/gin-gonic/gin"
)

// dictUploadDir is where uploaded DICT approval documents land. Overridable
// through the DICT_UPLOAD_DIR environment variable.
func dictUploadDir() string {
	if dir := os.Getenv("DICT_UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "uploads/dict"
}

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/api/reviews")
	{
		reviews.GET("", middleware.RequirePermission("reviews.read"), h.ListReviewStatuses)
		reviews.GET("/:unit", middleware.RequirePermission("reviews.read"), h.GetReviewStatus)
		reviews.POST("/:unit/complete", middleware.RequirePermission("reviews.write"), h.CompleteUnitReview)
		reviews.PUT("/:unit/presidential-status", middleware.RequirePermission("reviews.write"), h.SetPresidentialStatus)
		reviews.PUT("/:unit/dict-status", middleware.RequirePermission("reviews.write"), h.SetDICTStatus)
		reviews.POST("/:unit/dict-document", middleware.RequirePermission("reviews.write"), h.UploadDICTDocument)
	}
}

// ListReviewStatuses handles GET /api/reviews
// @Summary      List review statuses
// @Description  Retrieves the review status of every unit in a year cycle
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        year_cycle query    string  true  "Year cycle"
// @Success      200        {object} response.Response{data=[]model.ReviewStatus}
// @Failure      500        {object} response.Response
// @Router       /api/reviews [get]
func (h *ReviewHandler) ListReviewStatuses(c *gin.Context) {
	statuses, err := h.reviewService.ListReviewStatuses(c.Request.Context(), c.Query("year_cycle"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, statuses))
}

// GetReviewStatus handles GET /api/reviews/:unit
// @Summary      Get a unit's review status
// @Description  Retrieves (creating if absent) one unit's review record for a cycle
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        unit       path     string  true  "Unit name"
// @Param        year_cycle query    string  true  "Year cycle"
// @Success      200        {object} response.Response{data=model.ReviewStatus}
// @Failure      500        {object} response.Response
// @Router       /api/reviews/{unit} [get]
func (h *ReviewHandler) GetReviewStatus(c *gin.Context) {
	status, err := h.reviewService.GetReviewStatus(c.Request.Context(), c.Param("unit"), c.Query("year_cycle"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, status))
}

// CompleteUnitReview handles POST /api/reviews/:unit/complete
// @Summary      Complete a unit review
// @Description  Marks the unit's internal review done for the cycle and notifies its coordinators
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        unit       path     string  true  "Unit name"
// @Param        year_cycle query    string  true  "Year cycle"
// @Success      200        {object} response.Response{data=model.ReviewStatus}
// @Failure      400        {object} response.Response
// @Router       /api/reviews/{unit}/complete [post]
func (h *ReviewHandler) CompleteUnitReview(c *gin.Context) {
	userID := c.GetString("userID")
	status, err := h.reviewService.CompleteUnitReview(c.Request.Context(), c.Param("unit"), c.Query("year_cycle"), userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, status))
}

// SetPresidentialStatus handles PUT /api/reviews/:unit/presidential-status
// @Summary      Set presidential status
// @Description  Updates the presidential endorsement status of a unit's submission
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        unit       path     string                            true  "Unit name"
// @Param        year_cycle query    string                            true  "Year cycle"
// @Param        payload    body     service.SetPresidentialStatusDTO  true  "New status"
// @Success      200        {object} response.Response{data=model.ReviewStatus}
// @Failure      400        {object} response.Response
// @Router       /api/reviews/{unit}/presidential-status [put]
func (h *ReviewHandler) SetPresidentialStatus(c *gin.Context) {
	var req service.SetPresidentialStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	status, err := h.reviewService.SetPresidentialStatus(c.Request.Context(), c.Param("unit"), c.Query("year_cycle"), req.Status, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, status))
}

// SetDICTStatus handles PUT /api/reviews/:unit/dict-status
// @Summary      Set DICT status
// @Description  Updates the DICT evaluation status of a unit's submission
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        unit       path     string                    true  "Unit name"
// @Param        year_cycle query    string                    true  "Year cycle"
// @Param        payload    body     service.SetDICTStatusDTO  true  "New status"
// @Success      200        {object} response.Response{data=model.ReviewStatus}
// @Failure      400        {object} response.Response
// @Router       /api/reviews/{unit}/dict-status [put]
func (h *ReviewHandler) SetDICTStatus(c *gin.Context) {
	var req service.SetDICTStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	status, err := h.reviewService.SetDICTStatus(c.Request.Context(), c.Param("unit"), c.Query("year_cycle"), req.Status, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, status))
}

// UploadDICTDocument handles POST /api/reviews/:unit/dict-document
// @Summary      Upload a DICT document
// @Description  Stores the scanned DICT approval document and moves a pending DICT status to submitted
// @Tags         reviews
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        unit       path      string  true  "Unit name"
// @Param        year_cycle query     string  true  "Year cycle"
// @Param        document   formData  file    true  "PDF document"
// @Success      200        {object}  response.Response{data=model.ReviewStatus}
// @Failure      400        {object}  response.Response
// @Router       /api/reviews/{unit}/dict-document [post]
func (h *ReviewHandler) UploadDICTDocument(c *gin.Context) {
	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "document file is required"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "only PDF documents are accepted"))
		return
	}

	dir := dictUploadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "failed to prepare upload directory"))
		return
	}

	unit := c.Param("unit")
	name := fmt.Sprintf("%s-%s-%d%s", strings.ReplaceAll(unit, " ", "_"), c.Query("year_cycle"), time.Now().UnixNano(), ext)
	dest := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "failed to store document"))
		return
	}

	userID := c.GetString("userID")
	status, err := h.reviewService.AttachDICTDocument(c.Request.Context(), unit, c.Query("year_cycle"), dest, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, status))
}
