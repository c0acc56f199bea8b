package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, apiHandler *APIHandler, warrantyHandler *WarrantyHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		orders := api.Group("/service-orders/:id")
		orders.POST("/cogs", apiHandler.CalculateCOGS)
		orders.GET("/cogs", apiHandler.PreviewCOGS)
		orders.GET("/cogs/breakdown", apiHandler.GetCOGSBreakdown)
		orders.GET("/cogs/history", apiHandler.GetCOGSHistory)
		orders.GET("/gross-profit", apiHandler.GetGrossProfit)

		api.GET("/profit-reports/income-statement", apiHandler.GetIncomeStatement)
		api.POST("/financial-transactions", apiHandler.CreateTransaction)

		warranties := api.Group("/warranties")
		warranties.GET("", warrantyHandler.Search)
		warranties.POST("/service-orders/:serviceOrderId/generate", warrantyHandler.Generate)
		warranties.GET("/service-order/:serviceOrderId", warrantyHandler.GetByServiceOrder)
		warranties.GET("/:warrantyCode", warrantyHandler.GetByCode)
		warranties.POST("/:warrantyId/claims", warrantyHandler.CreateClaim)
		warranties.PUT("/claims/:claimId", warrantyHandler.UpdateClaimStatus)
	}
}
