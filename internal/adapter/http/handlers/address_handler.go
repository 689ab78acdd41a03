package handlers

import (
	"errors"
	"log"
	"net/http"

	response "xandr_checkout/internal/adapter/http/dto/response"
	"xandr_checkout/internal/usecase"
	"xandr_checkout/internal/usecase/interfaces"
	"xandr_checkout/pkg"

	"github.com/gin-gonic/gin"
)

// AddressHandler handles postal-code autofill lookups.

type AddressHandler struct {
	usecase *usecase.AddressLookupUseCase
}

func NewAddressHandler(uc *usecase.AddressLookupUseCase) *AddressHandler {
	return &AddressHandler{usecase: uc}
}

// LookupAddress resolves the cep query parameter to an address.
func (h *AddressHandler) LookupAddress(c *gin.Context) {
	cep := c.Query("cep")
	log.Printf("[address][handler] lookup start cep=%s", cep)

	addr, err := h.usecase.Lookup(c.Request.Context(), cep)
	if err != nil {
		appErr := mapAddressError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromAddress(addr))
}

func mapAddressError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidCEP):
		return pkg.NewDomainErrorSimple("INVALID_CEP", "CEP inválido", http.StatusBadRequest)
	case errors.Is(err, interfaces.ErrAddressNotFound):
		return pkg.NewDomainErrorSimple("ADDRESS_NOT_FOUND", "CEP não encontrado", http.StatusNotFound)
	default:
		return pkg.NewDomainError("ADDRESS_LOOKUP_FAILED", "Falha ao consultar CEP", err, http.StatusBadGateway)
	}
}
