package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/schooladmin/internal/app/controllers"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/middleware"
)

// Controllers groups the controllers mounted under /api/v1
type Controllers struct {
	FeeType       *controllers.FeeTypeController
	FeeDefinition *controllers.FeeDefinitionController
	FeeAssignment *controllers.FeeAssignmentController
	PaymentItem   *controllers.PaymentItemController
	Wallet        *controllers.WalletController
	Class         *controllers.ClassController
}

// SetupRouter configures all application routes. Every route requires a
// valid token; mutations additionally require the ADMIN role.
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.JWTAuth())

	admin := authMiddleware.RoleRequired(models.RoleAdmin)

	feeTypes := v1.Group("/fee-types")
	{
		feeTypes.GET("", c.FeeType.ListFeeTypes)
		feeTypes.GET("/:id", c.FeeType.GetFeeType)
		feeTypes.POST("", admin, c.FeeType.CreateFeeType)
		feeTypes.PUT("/:id", admin, c.FeeType.UpdateFeeType)
		feeTypes.DELETE("/:id", admin, c.FeeType.DeleteFeeType)
	}

	feeDefinitions := v1.Group("/fee-definitions")
	{
		feeDefinitions.GET("", c.FeeDefinition.ListFeeDefinitions)
		feeDefinitions.GET("/:id", c.FeeDefinition.GetFeeDefinition)
		feeDefinitions.POST("", admin, c.FeeDefinition.CreateFeeDefinition)
		feeDefinitions.PUT("/:id", admin, c.FeeDefinition.UpdateFeeDefinition)
		feeDefinitions.DELETE("/:id", admin, c.FeeDefinition.DeleteFeeDefinition)
	}

	feeAssignments := v1.Group("/fee-assignments")
	{
		feeAssignments.GET("", c.FeeAssignment.ListFeeAssignments)
		feeAssignments.POST("", admin, c.FeeAssignment.CreateFeeAssignment)
		feeAssignments.DELETE("/:id", admin, c.FeeAssignment.DeleteFeeAssignment)
	}

	paymentItems := v1.Group("/payment-items")
	{
		paymentItems.GET("", c.PaymentItem.ListPaymentItems)
		paymentItems.GET("/by-schedule/:scheduleId", c.PaymentItem.ListBySchedule)
		paymentItems.GET("/:id", c.PaymentItem.GetPaymentItem)
		paymentItems.PUT("/:id/status", admin, c.PaymentItem.UpdateStatus)
	}

	wallets := v1.Group("/student-wallets")
	{
		wallets.POST("", admin, c.Wallet.CreateWallet)
		wallets.POST("/bulk-topup", admin, c.Wallet.BulkTopup)
		wallets.GET("/:id", c.Wallet.GetWallet)
		wallets.GET("/:id/balance", c.Wallet.GetBalance)
		wallets.GET("/:id/statement", c.Wallet.GetStatement)
		wallets.GET("/:id/transactions", c.Wallet.GetTransactions)
		wallets.POST("/:id/topup", admin, c.Wallet.Topup)
		wallets.POST("/:id/purchase", admin, c.Wallet.Purchase)
	}

	classes := v1.Group("/classes")
	{
		classes.GET("", c.Class.ListClasses)
		classes.GET("/:id", c.Class.GetClass)
		classes.GET("/:id/fee-summary", c.FeeAssignment.ClassFeeSummary)
	}

	v1.GET("/bus-stops/:id/fee-summary", c.FeeAssignment.BusStopFeeSummary)
	v1.GET("/enrollments", c.Class.ListEnrollments)

	divisions := v1.Group("/divisions")
	{
		divisions.GET("", c.Class.ListDivisions)
		divisions.GET("/:id", c.Class.GetDivision)
		divisions.POST("", admin, c.Class.CreateDivision)
		divisions.PUT("/:id", admin, c.Class.UpdateDivision)
		divisions.DELETE("/:id", admin, c.Class.DeleteDivision)
	}
}
