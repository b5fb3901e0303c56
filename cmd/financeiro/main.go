// cmd/financeiro/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"financeiro-service/internal/api"
	"financeiro-service/internal/api/handlers"
	"financeiro-service/internal/api/responses"
	"financeiro-service/internal/config"
	"financeiro-service/internal/core/ingest"
	"financeiro-service/internal/core/reconcile"
	"financeiro-service/internal/erp"
	"financeiro-service/internal/metrics"
	"financeiro-service/internal/platform/cache"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: configuração inválida: %v", err)
	}

	logger := responses.InitLogger()
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	erpOpts := []erp.Option{
		erp.WithTimeout(cfg.ERPTimeout),
		erp.WithLogger(logger.Named("erp")),
	}
	if cfg.CacheEnabled() {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			// o cache é opcional: sem Redis as pessoas vão sempre ao ERP
			logger.Warn("Redis indisponível, seguindo sem cache de pessoas", zap.Error(err))
		} else {
			defer redisClient.Close()
			erpOpts = append(erpOpts, erp.WithPersonCache(cache.NewPersonCache(redisClient, cfg.PersonCacheTTL)))
			logger.Info("cache de pessoas ativo", zap.String("addr", cfg.RedisAddr))
		}
	}
	erpClient := erp.NewClient(cfg.ERPBaseURL, erpOpts...)

	ingestService := ingest.NewService(logger.Named("ingest"))
	reconcileService := reconcile.NewService(erpClient, reconcile.NewGreedyMatcher(time.Now), logger.Named("reconcile"))

	router := api.NewRouter(api.Handlers{
		Extrato: handlers.NewExtratoHandler(ingestService, reconcileService),
		ERP:     handlers.NewERPHandler(erpClient),
	}, cfg.MaxUploadMB)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.Harden(router, api.HardenOptions{Production: cfg.IsProduction(), RateLimit: cfg.RateLimit}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Printf("🚀 Financeiro Service (Go) iniciado e escutando em %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("falha no servidor HTTP", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("encerrando o servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("falha no encerramento gracioso", zap.Error(err))
	}
}
