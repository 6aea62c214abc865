// Package validation aplica as tags `validate` dos DTOs e traduz as falhas
// para um ValidationError em português.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperror "decolei/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Usa o nome do campo no JSON nas mensagens
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct valida s e devolve nil ou um *apperror.ValidationError.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.NewValidationError("Payload inválido.")
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, mensagem(fe))
	}
	return apperror.NewValidationError(strings.Join(msgs, "; "))
}

func mensagem(fe validator.FieldError) string {
	campo := fe.Namespace()
	if i := strings.Index(campo, "."); i >= 0 {
		campo = campo[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("o campo '%s' é obrigatório", campo)
	case "max":
		return fmt.Sprintf("o campo '%s' excede o limite de %s", campo, fe.Param())
	case "min":
		return fmt.Sprintf("o campo '%s' deve ter no mínimo %s", campo, fe.Param())
	case "email":
		return fmt.Sprintf("o campo '%s' deve ser um email válido", campo)
	case "uuid":
		return fmt.Sprintf("o campo '%s' deve ser um identificador válido", campo)
	case "url":
		return fmt.Sprintf("o campo '%s' deve ser uma URL válida", campo)
	default:
		return fmt.Sprintf("o campo '%s' é inválido (%s)", campo, fe.Tag())
	}
}
