package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	request "xandr_checkout/internal/adapter/http/dto/request"
	response "xandr_checkout/internal/adapter/http/dto/response"
	"xandr_checkout/internal/usecase"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles HTTP requests for checkout payments.

type CheckoutHandler struct {
	usecase usecase.ICheckoutPaymentUseCase
}

func NewCheckoutHandler(uc usecase.ICheckoutPaymentUseCase) *CheckoutHandler {
	return &CheckoutHandler{usecase: uc}
}

// CreatePayment creates a pix or credit card payment on the gateway.
func (h *CheckoutHandler) CreatePayment(c *gin.Context) {
	var payload request.CheckoutPaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("[checkout][handler] invalid payload err=%v", err)
		c.JSON(http.StatusBadRequest, response.NewPaymentError("Dados do pedido inválidos."))
		return
	}

	order := payload.ToOrder()
	reqCtx := usecase.RequestContext{
		ClientIP:  clientIP(c),
		UserAgent: c.Request.UserAgent(),
	}

	log.Printf("[checkout][handler] create start method=%s email=%s", order.PaymentMethod, order.User.Email)
	created, err := h.usecase.CreatePayment(c.Request.Context(), order, reqCtx)
	if err != nil {
		status, msg := mapCheckoutError(err)
		log.Printf("[checkout][handler] create failed status=%d err=%v", status, err)
		c.JSON(status, response.NewPaymentError(msg))
		return
	}
	log.Printf("[checkout][handler] create success payment_id=%s status=%s", created.PaymentID, created.Status)

	c.JSON(http.StatusOK, response.FromPaymentCreation(created))
}

// GetPaymentStatus returns the authoritative gateway status of a payment.
func (h *CheckoutHandler) GetPaymentStatus(c *gin.Context) {
	paymentID := c.Query("id")
	log.Printf("[checkout][handler] status start payment_id=%s", paymentID)

	view, err := h.usecase.GetStatus(c.Request.Context(), paymentID)
	if err != nil {
		status, msg := mapCheckoutError(err)
		log.Printf("[checkout][handler] status failed payment_id=%s err=%v", paymentID, err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	log.Printf("[checkout][handler] status success payment_id=%s status=%s", view.ID, view.Status)

	c.JSON(http.StatusOK, response.FromPaymentStatus(view))
}

// mapCheckoutError translates a use case failure into the HTTP status and
// client-facing message. Gateway rejections mirror the provider's status.
func mapCheckoutError(err error) (int, string) {
	var ge *usecase.GatewayError
	if errors.As(err, &ge) {
		status := ge.HTTPStatus
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, ge.Message
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidCheckoutPayload):
		return http.StatusBadRequest, "Dados do pedido inválidos."
	case errors.Is(err, usecase.ErrInvalidPaymentMethod):
		return http.StatusBadRequest, "Método de pagamento inválido."
	case errors.Is(err, usecase.ErrMissingCardData):
		return http.StatusBadRequest, "Dados do cartão ausentes ou inválidos."
	case errors.Is(err, usecase.ErrInvalidItemsTotal):
		return http.StatusBadRequest, "Valor do pedido inválido."
	case errors.Is(err, usecase.ErrInvalidPaymentID):
		return http.StatusBadRequest, "Identificador de pagamento inválido."
	default:
		return http.StatusInternalServerError, "Erro interno ao processar pagamento."
	}
}

// clientIP resolves the buyer's address behind proxy chains. Header
// precedence follows the deployment's edge: the platform header first,
// then the standard forwarding headers, then the socket address.
func clientIP(c *gin.Context) string {
	if v := c.GetHeader("x-vercel-forwarded-for"); v != "" {
		return firstForwarded(v)
	}
	if v := c.GetHeader("x-forwarded-for"); v != "" {
		return firstForwarded(v)
	}
	if v := c.GetHeader("x-real-ip"); v != "" {
		return strings.TrimSpace(v)
	}
	return c.ClientIP()
}

func firstForwarded(v string) string {
	if i := strings.Index(v, ","); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
