package routes

import (
	"log"
	"os"
	"strconv"

	_ "xandr_checkout/docs" // This will be auto-generated
	"xandr_checkout/internal/adapter/http/handlers"
	repository2 "xandr_checkout/internal/adapter/persistence/repository"
	"xandr_checkout/internal/infrastructure/analytics"
	"xandr_checkout/internal/infrastructure/cep"
	"xandr_checkout/internal/infrastructure/database"
	"xandr_checkout/internal/infrastructure/payments"
	"xandr_checkout/internal/infrastructure/provisioning"
	"xandr_checkout/internal/usecase"
	"xandr_checkout/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const PORT = 8080

// Run will start the server
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	err := router.Run(":" + strconv.Itoa(PORT))
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	ddb := database.ConnectDynamoDB()
	recordRepo := repository2.NewPaymentRecordDynamoRepository(ddb)

	var paymentGateway interfaces.IPaymentGateway
	mpGateway, err := payments.NewMercadoPagoGateway(os.Getenv("MERCADOPAGO_ACCESS_TOKEN"))
	if err != nil {
		log.Printf("Mercado Pago gateway not configured: %v", err)
	} else {
		paymentGateway = mpGateway
	}

	notifier := analytics.NewMetaConversionsClientFromEnv()
	provisioner := provisioning.NewMemboxClientFromEnv()
	addressLookup := cep.NewViaCEPClient()

	siteURL := os.Getenv("PUBLIC_SITE_URL")

	checkoutUseCase := usecase.NewCheckoutPaymentUseCase(paymentGateway, notifier, recordRepo, usecase.CheckoutConfig{
		PublicSiteURL: siteURL,
	})
	webhookUseCase := usecase.NewWebhookUseCase(paymentGateway, notifier, provisioner, recordRepo, usecase.ProvisioningConfig{
		ProductName: getenvDefault("MEMBOX_PRODUCT_NAME", "Mestres do Tráfego"),
		OrderBumpID: getenvDefault("MEMBOX_ORDER_BUMP_ID", "main-prod-001"),
	}, siteURL)
	addressUseCase := usecase.NewAddressLookupUseCase(addressLookup)

	checkoutHandler := handlers.NewCheckoutHandler(checkoutUseCase)
	webhookHandler := handlers.NewWebhookHandler(webhookUseCase)
	addressHandler := handlers.NewAddressHandler(addressUseCase)

	// Rotas publicas
	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addCheckoutRoutes(v1, checkoutHandler, webhookHandler, addressHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
