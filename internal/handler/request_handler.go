package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequestHandler exposes the uniform endpoint set for every request kind:
// create, list by visibility, list own, approve and deny.
type RequestHandler struct {
	requests service.RequestService
}

func NewRequestHandler(requests service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// RegisterRoutes binds the per-kind endpoints. The group must already carry
// the authentication middleware.
func (h *RequestHandler) RegisterRoutes(api *gin.RouterGroup) {
	kinds := []struct {
		path   string
		kind   workflow.Kind
		create gin.HandlerFunc
	}{
		{"/api/in-city-travels", workflow.KindInCityTravel, h.CreateInCityTravel},
		{"/api/out-of-city-travels", workflow.KindOutOfCityTravel, h.CreateOutOfCityTravel},
		{"/api/personal-requests", workflow.KindPersonal, h.CreatePersonal},
		{"/api/leave-requests", workflow.KindLeave, h.CreateLeave},
	}

	for _, k := range kinds {
		group := api.Group(k.path)
		group.POST("", k.create)
		group.GET("", h.list(k.kind))
		group.GET("/my", h.listMine(k.kind))
		group.PUT("/:id/approve", h.decide(k.kind, workflow.DecisionApprove))
		group.PUT("/:id/deny", h.decide(k.kind, workflow.DecisionReject))
	}
}

// CreateInCityTravel submits a new in-city travel request
// @Summary      Submit in-city travel request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateInCityTravelRequest  true  "Request payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/in-city-travels [post]
func (h *RequestHandler) CreateInCityTravel(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req service.CreateInCityTravelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.requests.CreateInCityTravel(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// CreateOutOfCityTravel submits a new out-of-city travel request
// @Summary      Submit out-of-city travel request (SPPD)
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateOutOfCityTravelRequest  true  "Request payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/out-of-city-travels [post]
func (h *RequestHandler) CreateOutOfCityTravel(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req service.CreateOutOfCityTravelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.requests.CreateOutOfCityTravel(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// CreatePersonal submits a new personal request
// @Summary      Submit personal request (time off, leave early, come late, temp leave)
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePersonalRequest  true  "Request payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/personal-requests [post]
func (h *RequestHandler) CreatePersonal(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req service.CreatePersonalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.requests.CreatePersonal(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// CreateLeave submits a new paid leave request
// @Summary      Submit leave request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateLeaveRequest  true  "Request payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/leave-requests [post]
func (h *RequestHandler) CreateLeave(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req service.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.requests.CreateLeave(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// list returns the requests of one kind visible to the acting user:
// everything for admins and HRD & GA members, own division for division
// heads, own requests for staff.
func (h *RequestHandler) list(kind workflow.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
			return
		}

		params := pagination.Parse(c)
		filter := service.ListFilter{
			Status: c.Query("status"),
			Page:   params.Page,
			Limit:  params.Limit,
		}

		entries, total, err := h.requests.List(c.Request.Context(), kind, actor, filter)
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}

		c.JSON(http.StatusOK, response.List(http.StatusOK, entries, total, params.Page, params.Limit))
	}
}

// listMine returns the acting user's own requests of one kind.
func (h *RequestHandler) listMine(kind workflow.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
			return
		}

		params := pagination.Parse(c)
		filter := service.ListFilter{
			Status: c.Query("status"),
			Page:   params.Page,
			Limit:  params.Limit,
		}

		entries, total, err := h.requests.ListMine(c.Request.Context(), kind, actor, filter)
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}

		c.JSON(http.StatusOK, response.List(http.StatusOK, entries, total, params.Page, params.Limit))
	}
}

// decide applies an approve or deny decision to the request's current
// stage. Authorization is enforced by the workflow engine, not per route.
func (h *RequestHandler) decide(kind workflow.Kind, decision workflow.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
			return
		}

		entry, err := h.requests.Decide(c.Request.Context(), kind, c.Param("id"), actor, decision)
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}

		c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
	}
}
