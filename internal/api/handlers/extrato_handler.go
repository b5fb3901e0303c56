package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"financeiro-service/internal/api/responses"
	"financeiro-service/internal/core/classify"
	"financeiro-service/internal/core/export"
	"financeiro-service/internal/core/ingest"
	"financeiro-service/internal/core/reconcile"
	"financeiro-service/internal/core/summary"
	"financeiro-service/internal/domain"
	"financeiro-service/internal/erp"

	"github.com/gin-gonic/gin"
)

// ExtratoHandler lida com importação, exportação e conciliação de extratos bancários.
type ExtratoHandler struct {
	ingest    ingest.Service
	reconcile reconcile.Service
	now       func() time.Time
}

// NewExtratoHandler cria um novo handler de extratos.
func NewExtratoHandler(ingestSvc ingest.Service, reconcileSvc reconcile.Service) *ExtratoHandler {
	return &ExtratoHandler{
		ingest:    ingestSvc,
		reconcile: reconcileSvc,
		now:       time.Now,
	}
}

// importResponse é o retorno da importação: metadados do lote e a visão atual.
type importResponse struct {
	BatchID        string                 `json:"batch_id"`
	Bank           string                 `json:"bank"`
	Header         domain.StatementHeader `json:"header"`
	Files          []domain.FileOutcome   `json:"files"`
	Warnings       []domain.ParseWarning  `json:"warnings,omitempty"`
	View           summary.View           `json:"view"`
	Classification classify.Result        `json:"classification"`
	Summary        domain.Summary         `json:"summary"`
}

// loadView importa os arquivos do formulário e aplica o estado da tela.
// Em caso de erro a resposta já foi enviada e ok é false.
func (h *ExtratoHandler) loadView(c *gin.Context) (batch *domain.ImportBatch, view summary.View, ok bool) {
	state, err := viewStateFromForm(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Parâmetros de visualização inválidos", err.Error())
		return nil, summary.View{}, false
	}

	files, closeFiles, err := openStatementFiles(c)
	defer closeFiles()
	if err != nil {
		if errors.Is(err, ingest.ErrNoFiles) {
			writeError(c, err, "")
			return nil, summary.View{}, false
		}
		responses.Error(c, http.StatusBadRequest, "Arquivos de extrato inválidos", err.Error())
		return nil, summary.View{}, false
	}

	batch, err = h.ingest.Import(files, c.PostForm("banco"))
	if err != nil {
		writeError(c, err, "Nenhum arquivo de extrato pôde ser lido")
		return nil, summary.View{}, false
	}
	return batch, summary.Apply(batch.Entries, state), true
}

// HandleImport importa um ou mais extratos e devolve a visão, a classificação e os totais.
func (h *ExtratoHandler) HandleImport(c *gin.Context) {
	batch, view, ok := h.loadView(c)
	if !ok {
		return
	}

	resp := importResponse{
		BatchID:        batch.BatchID,
		Bank:           batch.Bank,
		Header:         batch.Header,
		Files:          batch.Files,
		Warnings:       batch.Warnings,
		View:           view,
		Classification: classify.Classify(view.Rows),
		Summary:        summary.Summarize(view.Rows, batch.Entries),
	}
	responses.Success(c, resp, "Extrato importado com sucesso")
}

// HandleExport gera o arquivo da visão atual do extrato (todas as páginas).
func (h *ExtratoHandler) HandleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.PostForm("formato"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Formato de exportação inválido", err.Error())
		return
	}
	batch, view, ok := h.loadView(c)
	if !ok {
		return
	}

	data, err := export.Statement(view.Rows, format)
	if errors.Is(err, domain.ErrEmptyView) {
		responses.NoContent(c)
		return
	}
	if err != nil {
		writeError(c, err, "Erro ao gerar o arquivo do extrato")
		return
	}
	responses.File(c, export.FileName(export.StatementPrefix, batch.Bank, h.now(), format), format.ContentType(), data)
}

// runReconciliation importa os extratos e concilia os créditos PIX com o ERP.
func (h *ExtratoHandler) runReconciliation(c *gin.Context) (*domain.ReconciliationReport, bool) {
	branchCodes, err := parseIntList("branchCodes", c.PostForm("branchCodes"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Parâmetros inválidos", err.Error())
		return nil, false
	}
	customerCodes, err := parseIntList("customerCodes", c.PostForm("customerCodes"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Parâmetros inválidos", err.Error())
		return nil, false
	}

	_, view, ok := h.loadView(c)
	if !ok {
		return nil, false
	}

	filter := erp.ReceivableFilter{
		StartDate:     strings.TrimSpace(c.PostForm("startDate")),
		EndDate:       strings.TrimSpace(c.PostForm("endDate")),
		BranchCodes:   branchCodes,
		CustomerCodes: customerCodes,
	}
	report, err := h.reconcile.ReconcilePix(c.Request.Context(), view.Rows, filter)
	if err != nil {
		writeError(c, err, "Erro ao conciliar PIX")
		return nil, false
	}
	return report, true
}

// HandleReconcilePix concilia os créditos PIX do extrato com os títulos PIX do ERP.
func (h *ExtratoHandler) HandleReconcilePix(c *gin.Context) {
	report, ok := h.runReconciliation(c)
	if !ok {
		return
	}
	responses.Success(c, report, "Conciliação PIX concluída")
}

// HandleExportReconciliation gera o arquivo da conciliação PIX.
func (h *ExtratoHandler) HandleExportReconciliation(c *gin.Context) {
	format, err := export.ParseFormat(c.PostForm("formato"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Formato de exportação inválido", err.Error())
		return
	}
	report, ok := h.runReconciliation(c)
	if !ok {
		return
	}

	data, err := export.Reconciliation(*report, format)
	if errors.Is(err, domain.ErrEmptyView) {
		responses.NoContent(c)
		return
	}
	if err != nil {
		writeError(c, err, "Erro ao gerar o arquivo da conciliação")
		return
	}
	responses.File(c, export.FileName(export.ReconciliationPrefix, "", h.now(), format), format.ContentType(), data)
}
