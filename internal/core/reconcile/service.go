package reconcile

import (
	"context"
	"fmt"

	"financeiro-service/internal/core/classify"
	"financeiro-service/internal/domain"
	"financeiro-service/internal/erp"
	"financeiro-service/internal/metrics"

	"go.uber.org/zap"
)

// ReceivableSource é a parte do cliente do ERP usada na conciliação.
type ReceivableSource interface {
	SearchReceivables(ctx context.Context, f erp.ReceivableFilter) ([]domain.ReceivableRecord, error)
	LookupPersons(ctx context.Context, codes []int) ([]domain.Person, error)
}

type Service interface {
	ReconcilePix(ctx context.Context, entries []domain.StatementEntry, filter erp.ReceivableFilter) (*domain.ReconciliationReport, error)
}

type service struct {
	source  ReceivableSource
	matcher Matcher
	logger  *zap.Logger
}

func NewService(source ReceivableSource, matcher Matcher, logger *zap.Logger) Service {
	if matcher == nil {
		matcher = NewGreedyMatcher(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{source: source, matcher: matcher, logger: logger}
}

// ReconcilePix busca os títulos PIX do período no ERP e concilia com os créditos PIX do extrato.
func (s *service) ReconcilePix(ctx context.Context, entries []domain.StatementEntry, filter erp.ReceivableFilter) (*domain.ReconciliationReport, error) {
	filter.PaymentMethods = []int{domain.PaymentMethodPix}

	records, err := s.source.SearchReceivables(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar títulos PIX no ERP: %w", err)
	}

	candidates := classify.PixCredits(entries)
	report := s.matcher.Match(records, candidates)
	s.enrichNames(ctx, &report)

	metrics.ObserveReconciliation(report.MatchedCount, report.TotalCount-report.MatchedCount)
	s.logger.Info("conciliação PIX concluída",
		zap.Int("titulos", report.TotalCount),
		zap.Int("conciliados", report.MatchedCount),
		zap.Int("creditos_pix", len(candidates)),
	)
	return &report, nil
}

// enrichNames preenche o nome dos clientes que vieram sem nome do contas a receber.
// Falhas aqui não invalidam a conciliação.
func (s *service) enrichNames(ctx context.Context, report *domain.ReconciliationReport) {
	var codes []int
	for _, r := range report.Results {
		if r.Record.CustomerName == "" && r.Record.CustomerCode > 0 {
			codes = append(codes, r.Record.CustomerCode)
		}
	}
	if len(codes) == 0 {
		return
	}

	persons, err := s.source.LookupPersons(ctx, codes)
	if err != nil {
		s.logger.Warn("não foi possível buscar nomes dos clientes", zap.Error(err))
		return
	}
	names := make(map[int]string, len(persons))
	for _, p := range persons {
		names[p.Code] = p.Name
	}
	for i := range report.Results {
		rec := &report.Results[i].Record
		if rec.CustomerName == "" {
			rec.CustomerName = names[rec.CustomerCode]
		}
	}
}
