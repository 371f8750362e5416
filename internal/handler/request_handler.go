package handler

import (
	"net/http"

	"issp/internal/middleware"
	"issp/internal/service"
	"issp/pkg/pagination"
	"issp/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.POST("", middleware.RequirePermission("requests.write"), h.SubmitRequest)
		requests.POST("/:id/resubmit", middleware.RequirePermission("requests.write"), h.ResubmitRequest)
		requests.GET("", middleware.RequirePermission("requests.read"), h.ListSubmitted)
		requests.GET("/unit/:unit", middleware.RequirePermission("requests.read"), h.GetUnitRequests)
	}

	items := router.Group("/api/items")
	{
		items.PUT("/:id", middleware.RequirePermission("requests.write"), h.UpdateItem)
		items.POST("/:id/approve", middleware.RequirePermission("items.approve"), h.ApproveItem)
		items.POST("/:id/disapprove", middleware.RequirePermission("items.approve"), h.DisapproveItem)
	}
}

// SubmitRequest handles POST /api/requests
// @Summary      Submit a request
// @Description  Submits a new plan request with its line items for a year cycle
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitRequestDTO  true  "Request payload"
// @Success      201      {object}  response.Response{data=model.ISSPRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	var req service.SubmitRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	created, err := h.requestService.SubmitRequest(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// ResubmitRequest handles POST /api/requests/:id/resubmit
// @Summary      Resubmit a request
// @Description  Flags an existing request as resubmitted and records the revision time
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.ISSPRequest}
// @Failure      400  {object}  response.Response
// @Router       /api/requests/{id}/resubmit [post]
func (h *RequestHandler) ResubmitRequest(c *gin.Context) {
	userID := c.GetString("userID")
	request, err := h.requestService.ResubmitRequest(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// ListSubmitted handles GET /api/requests
// @Summary      List submitted requests
// @Description  Retrieves a paginated list of submitted requests for a year cycle
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        year_cycle query    string  true   "Year cycle, e.g. 2024-2026"
// @Param        page       query    int     false  "Page number (default 1)"
// @Param        limit      query    int     false  "Items per page (default 20)"
// @Success      200        {object} response.Response{data=object}
// @Failure      500        {object} response.Response
// @Router       /api/requests [get]
func (h *RequestHandler) ListSubmitted(c *gin.Context) {
	params := pagination.Parse(c)
	yearCycle := c.Query("year_cycle")

	requests, total, err := h.requestService.ListSubmitted(c.Request.Context(), yearCycle, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch requests"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetUnitRequests handles GET /api/requests/unit/:unit
// @Summary      Get a unit's requests
// @Description  Retrieves every request one unit holds in a year cycle
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        unit       path     string  true  "Unit name"
// @Param        year_cycle query    string  true  "Year cycle"
// @Success      200        {object} response.Response{data=[]model.ISSPRequest}
// @Failure      500        {object} response.Response
// @Router       /api/requests/unit/{unit} [get]
func (h *RequestHandler) GetUnitRequests(c *gin.Context) {
	requests, err := h.requestService.GetUnitRequests(c.Request.Context(), c.Param("unit"), c.Query("year_cycle"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// UpdateItem handles PUT /api/items/:id
// @Summary      Update a line item
// @Description  Edits a line item's price, quantity, specification or purpose and returns the refreshed parent request
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Item ID"
// @Param        payload  body      service.UpdateItemDTO   true  "Fields to update"
// @Success      200      {object}  response.Response{data=model.ISSPRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/items/{id} [put]
func (h *RequestHandler) UpdateItem(c *gin.Context) {
	var req service.UpdateItemDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	request, err := h.requestService.UpdateItem(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// ApproveItem handles POST /api/items/:id/approve
// @Summary      Approve a line item
// @Description  Marks a pending line item as approved and notifies the owning unit
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  response.Response{data=model.ISSPRequest}
// @Failure      400  {object}  response.Response
// @Router       /api/items/{id}/approve [post]
func (h *RequestHandler) ApproveItem(c *gin.Context) {
	userID := c.GetString("userID")
	request, err := h.requestService.ApproveItem(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// DisapproveItem handles POST /api/items/:id/disapprove
// @Summary      Disapprove a line item
// @Description  Marks a pending line item as disapproved; a reason is mandatory
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Item ID"
// @Param        payload  body      service.DisapproveItemDTO   true  "Disapproval reason"
// @Success      200      {object}  response.Response{data=model.ISSPRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/items/{id}/disapprove [post]
func (h *RequestHandler) DisapproveItem(c *gin.Context) {
	var req service.DisapproveItemDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	userID := c.GetString("userID")
	request, err := h.requestService.DisapproveItem(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}
