package employee

import (
	"masar-finance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.Guard) {
	employees := r.Group("/employees")
	{
		employees.GET("", guard.Allow("employee", "read"), handler.GetAll)
		employees.GET("/:id", guard.Allow("employee", "read"), handler.GetByID)
	}
}
