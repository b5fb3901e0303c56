// Package api monta as rotas HTTP do serviço financeiro e a cadeia de middlewares.
package api

import (
	"net/http"
	"time"

	"financeiro-service/internal/api/handlers"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"
)

const serviceName = "financeiro-service"

// Handlers agrupa os handlers registrados no roteador.
type Handlers struct {
	Extrato *handlers.ExtratoHandler
	ERP     *handlers.ERPHandler
}

// NewRouter registra as rotas /api/v1, /health e /metrics.
func NewRouter(h Handlers, maxUploadMB int64) *gin.Engine {
	router := gin.Default()
	if maxUploadMB > 0 {
		router.MaxMultipartMemory = maxUploadMB << 20
	}

	apiV1 := router.Group("/api/v1")
	{
		extratos := apiV1.Group("/extratos")
		extratos.POST("/importar", h.Extrato.HandleImport)
		extratos.POST("/exportar", h.Extrato.HandleExport)
		extratos.POST("/conciliar-pix", h.Extrato.HandleReconcilePix)
		extratos.POST("/conciliar-pix/exportar", h.Extrato.HandleExportReconciliation)

		erpGroup := apiV1.Group("/erp")
		erpGroup.GET("/recebiveis", h.ERP.HandleSearchReceivables)
		erpGroup.POST("/pessoas", h.ERP.HandleLookupPersons)
		erpGroup.GET("/pessoas/:code/pedidos", h.ERP.HandlePersonOrders)
		erpGroup.GET("/razao", h.ERP.HandleLedgerExtract)
		erpGroup.POST("/danfe", h.ERP.HandleDanfe)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": serviceName})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// HardenOptions configura os middlewares aplicados fora do gin.
type HardenOptions struct {
	Production bool
	// requisições por minuto por IP; 0 desliga o limite
	RateLimit int
}

// Harden aplica os cabeçalhos de segurança e o limite de requisições por IP.
func Harden(next http.Handler, opts HardenOptions) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !opts.Production,
	})

	handler := secureMiddleware.Handler(next)
	if opts.RateLimit > 0 {
		handler = httprate.Limit(opts.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))(handler)
	}
	return handler
}
