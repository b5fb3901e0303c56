package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	importsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "financeiro_imports_total",
			Help: "Arquivos de extrato processados, por banco e status.",
		},
		[]string{"bank", "status"}, // status: success|format_error
	)

	importEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "financeiro_import_entries_total",
			Help: "Lançamentos de extrato lidos, por banco.",
		},
		[]string{"bank"},
	)

	reconciliationRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "financeiro_reconciliation_records_total",
			Help: "Títulos PIX do ERP avaliados na conciliação, por resultado.",
		},
		[]string{"result"}, // matched|unmatched
	)

	erpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "financeiro_erp_request_duration_seconds",
			Help:    "Tempo das chamadas à API do ERP em segundos.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)
)

// Init registra as métricas no registry global.
func Init() {
	prometheus.MustRegister(importsTotal, importEntries, reconciliationRecords, erpDuration)
}

// ObserveImport registra o resultado da leitura de um arquivo de extrato.
func ObserveImport(bank, status string, entries int) {
	importsTotal.With(prometheus.Labels{"bank": bank, "status": status}).Inc()
	if entries > 0 {
		importEntries.WithLabelValues(bank).Add(float64(entries))
	}
}

// ObserveReconciliation registra quantos títulos foram ou não conciliados.
func ObserveReconciliation(matched, unmatched int) {
	reconciliationRecords.WithLabelValues("matched").Add(float64(matched))
	reconciliationRecords.WithLabelValues("unmatched").Add(float64(unmatched))
}

// ObserveERP registra a duração de uma chamada ao ERP.
func ObserveERP(operation, status string, d time.Duration) {
	erpDuration.With(prometheus.Labels{"operation": operation, "status": status}).Observe(d.Seconds())
}
