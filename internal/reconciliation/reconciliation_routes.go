package reconciliation

import (
	"masar-finance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.Guard) {
	reconciliation := r.Group("/reconciliation")
	{
		reconciliation.GET("", guard.Allow("reconciliation", "read"), handler.ReconcileOrganization)
		reconciliation.GET("/accounts/:id", guard.Allow("reconciliation", "read"), handler.ReconcileAccount)
	}
}
