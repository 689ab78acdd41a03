package routes

import (
	"xandr_checkout/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathCheckout = "/checkout"
	PathWebhooks = "/webhooks"
	PathAddress  = "/address"
)

func addCheckoutRoutes(rg *gin.RouterGroup, checkoutHandler *handlers.CheckoutHandler, webhookHandler *handlers.WebhookHandler, addressHandler *handlers.AddressHandler) {
	checkout := rg.Group(PathCheckout)
	{
		checkout.POST("/payments", checkoutHandler.CreatePayment)
		checkout.GET("/payments/status", checkoutHandler.GetPaymentStatus)
	}

	webhooks := rg.Group(PathWebhooks)
	{
		webhooks.POST("/mercadopago", webhookHandler.HandleNotification)
	}

	rg.GET(PathAddress, addressHandler.LookupAddress)
}
