package usecase

import (
	"regexp"
	"strings"

	"xandr_checkout/internal/domain/entities"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateOrderForm checks the order form and returns a field -> message
// map. Pure and synchronous; an empty map means the form is valid and the
// caller owns error display.
func ValidateOrderForm(form entities.OrderForm) entities.FieldErrors {
	errs := entities.FieldErrors{}

	if len(strings.TrimSpace(form.Name)) < 3 {
		errs["name"] = "Nome deve ter pelo menos 3 caracteres."
	}

	if !emailPattern.MatchString(form.Email) {
		errs["email"] = "Insira um e-mail válido."
	}

	if len(form.Phone) < 10 {
		errs["phone"] = "Telefone inválido."
	}

	doc := digitsOnly(form.Document)
	if len(doc) != 11 && len(doc) != 14 {
		errs["document"] = "CPF ou CNPJ inválido."
	}

	if len(digitsOnly(form.ZipCode)) != 8 {
		errs["zipCode"] = "CEP inválido."
	}

	if strings.TrimSpace(form.Street) == "" {
		errs["street"] = "Endereço obrigatório."
	}
	if strings.TrimSpace(form.Number) == "" {
		errs["number"] = "Número obrigatório."
	}
	if strings.TrimSpace(form.Neighborhood) == "" {
		errs["neighborhood"] = "Bairro obrigatório."
	}
	if strings.TrimSpace(form.City) == "" {
		errs["city"] = "Cidade obrigatória."
	}
	if strings.TrimSpace(form.State) == "" {
		errs["state"] = "Estado obrigatório."
	}

	return errs
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
