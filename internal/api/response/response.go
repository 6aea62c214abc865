// Package response concentra a escrita das respostas JSON e a leitura dos payloads
// compartilhadas pelos handlers da API.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/logger"
	"decolei/internal/pkg/middleware"
)

const maxBodyBytes = 1 << 20

// Send processa erros de serviço e envia respostas padronizadas ao cliente.
func Send(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		log.Debug("Requisição concluída com sucesso", logger.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil && successStatus != http.StatusNoContent {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				log.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	fields := logger.Fields{"method": r.Method, "path": r.URL.Path, "status": status}
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		fields["user_id"] = p.UserID
	}
	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err, fields)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), fields)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// Decode lê o corpo JSON da requisição em v. Corpo vazio ou malformado vira ValidationError.
func Decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.NewValidationError("O corpo da requisição está vazio.")
		}
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}

// Principal devolve o usuário autenticado ou um UnauthorizedError.
func Principal(r *http.Request) (domain.Principal, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return domain.Principal{}, apperror.NewUnauthorizedError("Autorização necessária.")
	}
	return p, nil
}
