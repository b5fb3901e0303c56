// internal/api/responses/responses.go
package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// APIResponse é o envelope padrão das respostas da API.
type APIResponse struct {
	Status  string      `json:"status"` // "success" or "error"
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// InitLogger inicializa o logger de produção e o devolve para uso nos serviços.
func InitLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewExample()
	}
	logger = l
	return l
}

// Success envia uma resposta de sucesso com os dados e a mensagem.
func Success(c *gin.Context, data interface{}, message string) {
	resp := APIResponse{Status: "success", Data: data, Message: message}
	c.JSON(http.StatusOK, resp)
	logger.Info("API success", zap.String("path", c.Request.URL.Path), zap.Int("status", http.StatusOK))
}

// Error envia uma resposta de erro com o código, a mensagem e os detalhes opcionais.
func Error(c *gin.Context, code int, message string, errs ...string) {
	resp := APIResponse{Status: "error", Message: message, Errors: errs}
	c.JSON(code, resp)
	logger.Error("API error", zap.String("path", c.Request.URL.Path), zap.Int("status", code), zap.Strings("errors", errs))
}

// File envia um arquivo para download.
func File(c *gin.Context, fileName, contentType string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, contentType, data)
	logger.Info("API file", zap.String("path", c.Request.URL.Path), zap.String("file", fileName), zap.Int("bytes", len(data)))
}

// NoContent responde 204 quando não há nada a devolver.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
	logger.Info("API no content", zap.String("path", c.Request.URL.Path), zap.Int("status", http.StatusNoContent))
}
