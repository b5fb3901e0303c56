package handlers

import (
	"errors"
	"net/http"
	"strings"

	"financeiro-service/internal/api/responses"
	"financeiro-service/internal/core/ingest"
	"financeiro-service/internal/domain"
	"financeiro-service/internal/erp"

	"github.com/gin-gonic/gin"
)

// writeError converte o erro no status HTTP adequado.
//   - planilha inválida: 422
//   - parâmetros inválidos: 400
//   - falha no ERP: 502, com a mensagem do ERP
//   - demais: 500
func writeError(c *gin.Context, err error, message string) {
	var (
		formatErr     *domain.FormatError
		validationErr *erp.ValidationError
		apiErr        *erp.APIError
		httpErr       *erp.HTTPError
	)

	details := strings.Split(err.Error(), "\n")
	switch {
	case errors.Is(err, ingest.ErrNoFiles):
		responses.Error(c, http.StatusBadRequest, "Nenhum arquivo de extrato (.xls, .xlsx) foi enviado")
	case errors.As(err, &formatErr):
		responses.Error(c, http.StatusUnprocessableEntity, message, details...)
	case errors.As(err, &validationErr):
		responses.Error(c, http.StatusBadRequest, "Parâmetros inválidos", validationErr.Err.Error())
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = "O ERP recusou a requisição"
		}
		responses.Error(c, http.StatusBadGateway, msg, details...)
	case errors.As(err, &httpErr) && httpErr.Message != "":
		responses.Error(c, http.StatusBadGateway, httpErr.Message, details...)
	case erp.IsUpstream(err):
		responses.Error(c, http.StatusBadGateway, "Falha na comunicação com o ERP", details...)
	default:
		responses.Error(c, http.StatusInternalServerError, message, details...)
	}
}
