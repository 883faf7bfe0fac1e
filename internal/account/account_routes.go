package account

import (
	"masar-finance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.Guard) {
	accounts := r.Group("/accounts")
	{
		accounts.GET("", guard.Allow("account", "read"), handler.GetAll)
		accounts.GET("/:id", guard.Allow("account", "read"), handler.GetByID)
		accounts.GET("/:id/balance", guard.Allow("account", "read"), handler.GetBalance)
	}
}
