package tickets

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"certificados/common"
	"certificados/middleware"
)

// Handler handles HTTP requests for tickets
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
	group.GET("/:ticket", h.Get)
	group.POST("", h.Create)
	group.PUT("/:ticket", h.Rename)
	group.DELETE("/:ticket", h.Delete)
}

// List handles GET /v1/tickets
func (h *Handler) List(c *gin.Context) {
	send := middleware.Send(c)

	all, err := h.svc.List(c.Request.Context())
	if err != nil {
		send(middleware.Response{
			Code:    common.StatusCode(err),
			Message: "Failed to list tickets",
			Error:   err,
		})
		return
	}

	send(middleware.Response{
		Data: middleware.ListData{Count: len(all), Data: all},
	})
}

// Get handles GET /v1/tickets/:ticket
func (h *Handler) Get(c *gin.Context) {
	send := middleware.Send(c)

	t, err := h.svc.Get(c.Request.Context(), c.Param("ticket"))
	if err != nil {
		send(middleware.Response{
			Code:    common.StatusCode(err),
			Message: "Failed to get ticket",
			Error:   err,
		})
		return
	}

	send(middleware.Response{Data: t})
}

// Create handles POST /v1/tickets
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

	t, err := h.svc.Create(c.Request.Context(), payload.Ticket)
	if err != nil {
		send(middleware.Response{
			Code:    common.StatusCode(err),
			Message: "Failed to create ticket",
			Error:   err,
		})
		return
	}

	send(middleware.Response{Code: http.StatusCreated, Data: t})
}

// Rename handles PUT /v1/tickets/:ticket
func (h *Handler) Rename(c *gin.Context) {
	send := middleware.Send(c)

	var payload RenameRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid JSON payload",
			Error:   err,
		})
		return
	}

	t, err := h.svc.Rename(c.Request.Context(), c.Param("ticket"), payload.Ticket)
	if err != nil {
		send(middleware.Response{
			Code:    common.StatusCode(err),
			Message: "Failed to rename ticket",
			Error:   err,
		})
		return
	}

	send(middleware.Response{Data: t})
}

// Delete handles DELETE /v1/tickets/:ticket
func (h *Handler) Delete(c *gin.Context) {
	send := middleware.Send(c)

	if err := h.svc.Delete(c.Request.Context(), c.Param("ticket")); err != nil {
		send(middleware.Response{
			Code:    common.StatusCode(err),
			Message: "Failed to delete ticket",
			Error:   err,
		})
		return
	}

	send(middleware.Response{Message: "Ticket deleted"})
}
