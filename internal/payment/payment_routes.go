package payment

import (
	"masar-finance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.Guard) {
	payments := r.Group("/payments")
	{
		payments.GET("", guard.Allow("payment", "read"), handler.GetAll)
		payments.GET("/:id", guard.Allow("payment", "read"), handler.GetByID)
		payments.POST("", guard.Mutate("payment", "create", handler.Create)...)
		payments.DELETE("/:id", guard.Mutate("payment", "delete", handler.Delete)...)
	}
}
