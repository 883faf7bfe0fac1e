package transfer

import (
	"masar-finance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.Guard) {
	transfers := r.Group("/transfers")
	{
		transfers.GET("", guard.Allow("transfer", "read"), handler.GetAll)
		transfers.GET("/:id", guard.Allow("transfer", "read"), handler.GetByID)
		transfers.POST("", guard.Mutate("transfer", "create", handler.Create)...)
		transfers.POST("/:id/cancel", guard.Mutate("transfer", "cancel", handler.Cancel)...)
	}
}
