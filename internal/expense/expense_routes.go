package expense

import (
	"masar-finance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.Guard) {
	expenses := r.Group("/expenses")
	{
		expenses.GET("", guard.Allow("expense", "read"), handler.GetAll)
		expenses.GET("/:id", guard.Allow("expense", "read"), handler.GetByID)

		expenses.POST("", guard.Mutate("expense", "create", handler.Create)...)
		expenses.POST("/:id/pay", guard.Mutate("expense", "pay", handler.Pay)...)
		expenses.POST("/:id/cancel", guard.Mutate("expense", "cancel", handler.Cancel)...)
		expenses.DELETE("/:id", guard.Mutate("expense", "delete", handler.Delete)...)
	}
}
