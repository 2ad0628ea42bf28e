package handler

import (
	"defi_direct_back/pkg/middleware"
	"defi_direct_back/pkg/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service       *service.Service
	webhookSecret string
}

func NewHandler(service *service.Service, webhookSecret string) *Handler {
	return &Handler{
		service:       service,
		webhookSecret: webhookSecret,
	}
}

func (h *Handler) InitRoute() *gin.Engine {
	router := gin.New()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://defi-direct.app"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Wallet-Address"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	router.POST("/webhook/paystack", h.PaystackWebhook)

	api := router.Group("/api", middleware.WalletAuthMiddleware())
	{
		api.GET("/banks", h.ListBanks)
		api.POST("/account/resolve", h.ResolveAccount)

		transfer := api.Group("/transfer")
		{
			transfer.GET("/quote", h.GetQuote)
			transfer.POST("", h.Transfer)
			transfer.POST("/batch", h.BatchTransfer)
		}

		api.GET("/transactions", h.GetTransactions)
		api.GET("/transactions/pending", h.GetPending)
	}
	return router
}
