package payroll

import (
	"masar-finance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.Guard) {
	runs := r.Group("/payroll-runs")
	{
		runs.GET("", guard.Allow("payroll", "read"), handler.GetAll)
		runs.GET("/:id", guard.Allow("payroll", "read"), handler.GetByID)

		runs.POST("", guard.Mutate("payroll", "create", handler.Create)...)
		runs.POST("/:id/populate", guard.Mutate("payroll", "populate", handler.Populate)...)
		runs.POST("/:id/approve", guard.Mutate("payroll", "approve", handler.Approve)...)
		runs.POST("/:id/mark-paid", guard.Mutate("payroll", "pay", handler.MarkAsPaid)...)
		runs.POST("/:id/cancel", guard.Mutate("payroll", "cancel", handler.Cancel)...)
	}
}
