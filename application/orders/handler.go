package orders

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"certificados/common"
	"certificados/middleware"
)

// Handler handles HTTP requests for pedidos
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler
func NewHandler(service *Service) *Handler {
	return &Handler{svc: service}
}

// RegisterRoutes registers the handler routes
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.GET("/:uuid", h.Get)
	group.POST("", h.Create)
	group.PATCH("/:uuid", h.Update)
	group.DELETE("/:uuid", h.Delete)
}

// List handles GET /v1/pedidos with optional equality filters and paging.
func (h *Handler) List(c *gin.Context) {
	send := middleware.Send(c)

	filters := ListFilters{
		Status:    c.Query("status"),
		Ticket:    c.Query("ticket"),
		NumeroOAB: c.Query("numero_oab"),
	}

	paginated := false
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			send(middleware.Response{
				Code:    http.StatusBadRequest,
				Message: "Invalid limit parameter",
				Error:   err,
			})
			return
		}
		filters.Limit = limit
		paginated = true
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			send(middleware.Response{
				Code:    http.StatusBadRequest,
				Message: "Invalid offset parameter",
				Error:   err,
			})
			return
		}
		filters.Offset = offset
		paginated = true
	}

	page, total, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		send(middleware.Response{
			Code:    common.StatusCode(err),
			Message: "Failed to list pedidos",
			Error:   err,
		})
		return
	}

	if paginated {
		send(middleware.Response{
			Data: middleware.PageData{
				Count:  len(page),
				Total:  total,
				Limit:  filters.Limit,
				Offset: filters.Offset,
				Data:   page,
			},
		})
		return
	}

	send(middleware.Response{
		Data: middleware.ListData{Count: len(page), Data: page},
	})
}

// Get handles GET /v1/pedidos/:uuid
func (h *Handler) Get(c *gin.Context) {
	send := middleware.Send(c)

	o, err := h.svc.Get(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		send(middleware.Response{
			Code:    common.StatusCode(err),
			Message: "Failed to get pedido",
			Error:   err,
		})
		return
	}

	send(middleware.Response{Data: o})
}

// Create handles POST /v1/pedidos. A duplicate numero_oab is a 409 carrying
// both the denied order that was written and a reference to the existing
// one; it is not a failed request.
func (h *Handler) Create(c *gin.Context) {
	send := middleware.Send(c)

	var payload CreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid JSON payload",
			Error:   err,
		})
		return
	}

	result, err := h.svc.Create(c.Request.Context(), payload)
	if err != nil {
		send(middleware.Response{
			Code:    common.StatusCode(err),
			Message: "Failed to create pedido",
			Error:   err,
		})
		return
	}

	if result.Existing != nil {
		send(middleware.Response{
			Code:    http.StatusConflict,
			Message: "Duplicate numero_oab",
			Data: gin.H{
				"created":  result.Order,
				"existing": result.Existing,
			},
		})
		return
	}

	send(middleware.Response{Code: http.StatusCreated, Data: result.Order})
}

// Update handles PATCH /v1/pedidos/:uuid
func (h *Handler) Update(c *gin.Context) {
	send := middleware.Send(c)

	var payload UpdateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid JSON payload",
			Error:   err,
		})
		return
	}

	o, err := h.svc.Update(c.Request.Context(), c.Param("uuid"), payload)
	if err != nil {
		send(middleware.Response{
			Code:    common.StatusCode(err),
			Message: "Failed to update pedido",
			Error:   err,
		})
		return
	}

	send(middleware.Response{Data: o})
}

// Delete handles DELETE /v1/pedidos/:uuid
func (h *Handler) Delete(c *gin.Context) {
	send := middleware.Send(c)

	if err := h.svc.Delete(c.Request.Context(), c.Param("uuid")); err != nil {
		send(middleware.Response{
			Code:    common.StatusCode(err),
			Message: "Failed to delete pedido",
			Error:   err,
		})
		return
	}

	send(middleware.Response{Message: "Pedido deleted"})
}
