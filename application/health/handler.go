package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"certificados/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{svc: service}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	health := api.Group("/health")
	{
		health.GET("", h.HealthCheck)
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	send := middleware.Send(c)

	result := h.svc.CheckHealth(c.Request.Context())
	for _, status := range result {
		if status != "ok" {
			send(middleware.Response{
				Code:    http.StatusServiceUnavailable,
				Message: "Health check failed",
				Data:    result,
			})
			return
		}
	}

	send(middleware.Response{
		Message: "Health check completed",
		Data:    result,
	})
}
