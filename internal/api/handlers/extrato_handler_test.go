package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"financeiro-service/internal/core/ingest"
	"financeiro-service/internal/core/reconcile"
	"financeiro-service/internal/domain"
	"financeiro-service/internal/erp"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upload struct {
	name string
	data []byte
}

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func sicrediWorkbook(t *testing.T) []byte {
	return workbook(t, [][]any{
		{"Associado:", "LOJA EXEMPLO"},
		{"Data", "Descrição", "Documento", "Valor", "Saldo"},
		{"", "Saldo Anterior", "", "", "1.000,00"},
		{"10/01/2024", "PIX RECEBIDO ANA", "", "100,00", "1.100,00"},
		{"10/01/2024", "TARIFA", "", "-5,00", "1.095,00"},
		{"11/01/2024", "REDE DEBITO", "", "50,00", "1.145,00"},
	})
}

func multipartRequest(t *testing.T, path string, files []upload, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		part, err := w.CreateFormFile(statementFilesField, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

type fakeReconciler struct {
	entries []domain.StatementEntry
	filter  erp.ReceivableFilter
	report  *domain.ReconciliationReport
	err     error
}

func (f *fakeReconciler) ReconcilePix(_ context.Context, entries []domain.StatementEntry, filter erp.ReceivableFilter) (*domain.ReconciliationReport, error) {
	f.entries = entries
	f.filter = filter
	return f.report, f.err
}

func newExtratoRouter(rec reconcile.Service) *gin.Engine {
	h := NewExtratoHandler(ingest.NewService(nil), rec)
	h.now = func() time.Time { return time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC) }

	r := gin.New()
	r.POST("/importar", h.HandleImport)
	r.POST("/exportar", h.HandleExport)
	r.POST("/conciliar-pix", h.HandleReconcilePix)
	r.POST("/conciliar-pix/exportar", h.HandleExportReconciliation)
	return r
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandleImport(t *testing.T) {
	router := newExtratoRouter(&fakeReconciler{})
	req := multipartRequest(t, "/importar",
		[]upload{{"jan.xlsx", sicrediWorkbook(t)}},
		map[string]string{"banco": "sicredi", "tipo": "credit", "ordenarPor": "amount", "ordem": "desc"},
	)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decode(t, w)
	assert.Equal(t, "success", env.Status)

	var data struct {
		Bank   string                 `json:"bank"`
		Header domain.StatementHeader `json:"header"`
		View   struct {
			Rows       []domain.StatementEntry `json:"rows"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		} `json:"view"`
		Summary domain.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "sicredi", data.Bank)
	assert.Equal(t, "LOJA EXEMPLO", data.Header.AccountHolder)
	require.Len(t, data.View.Rows, 2)
	assert.Equal(t, "PIX RECEBIDO ANA", data.View.Rows[0].Description)
	assert.Equal(t, 2, data.View.Pagination.Total)
	assert.Equal(t, 150.0, data.Summary.TotalCredits)
	require.NotNil(t, data.Summary.FinalBalance)
	assert.Equal(t, 1145.0, *data.Summary.FinalBalance)
}

func TestHandleImportErrors(t *testing.T) {
	router := newExtratoRouter(&fakeReconciler{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/importar", nil, map[string]string{"banco": "sicredi"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/importar", []upload{{"extrato.pdf", []byte("x")}}, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	noHeader := workbook(t, [][]any{{"sem", "cabeçalho"}, {"01/01/2024", "X", "", "1,00", ""}})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/importar", []upload{{"ruim.xlsx", noHeader}}, map[string]string{"banco": "sicredi"}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w)
	require.NotEmpty(t, env.Errors)
	assert.Contains(t, env.Errors[0], "ruim.xlsx")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/importar", []upload{{"jan.xlsx", sicrediWorkbook(t)}}, map[string]string{"ordenarPor": "valor"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleExport(t *testing.T) {
	router := newExtratoRouter(&fakeReconciler{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/exportar",
		[]upload{{"jan.xlsx", sicrediWorkbook(t)}},
		map[string]string{"banco": "sicredi", "formato": "csv"},
	))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "attachment; filename=Extrato_sicredi_20240201.csv", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "PIX RECEBIDO ANA")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/exportar",
		[]upload{{"jan.xlsx", sicrediWorkbook(t)}},
		map[string]string{"banco": "sicredi", "busca": "inexistente"},
	))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/exportar",
		[]upload{{"jan.xlsx", sicrediWorkbook(t)}},
		map[string]string{"formato": "pdf"},
	))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleReconcilePix(t *testing.T) {
	rec := &fakeReconciler{report: &domain.ReconciliationReport{MatchedCount: 1, TotalCount: 1}}
	router := newExtratoRouter(rec)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/conciliar-pix",
		[]upload{{"jan.xlsx", sicrediWorkbook(t)}},
		map[string]string{"banco": "sicredi", "startDate": "2024-01-01", "endDate": "2024-01-31", "branchCodes": "1, 2"},
	))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []int{1, 2}, rec.filter.BranchCodes)
	assert.Equal(t, "2024-01-01", rec.filter.StartDate)
	assert.Len(t, rec.entries, 4)

	var report domain.ReconciliationReport
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &report))
	assert.Equal(t, 1, report.MatchedCount)
}

func TestHandleReconcilePixMapsERPErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&erp.APIError{Operation: "search_receivables", Message: "Filial inválida"}, http.StatusBadGateway},
		{&erp.NetworkError{Operation: "search_receivables", Err: context.DeadlineExceeded}, http.StatusBadGateway},
		{&erp.ValidationError{Operation: "search_receivables", Err: assert.AnError}, http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		router := newExtratoRouter(&fakeReconciler{err: tc.err})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, multipartRequest(t, "/conciliar-pix",
			[]upload{{"jan.xlsx", sicrediWorkbook(t)}},
			map[string]string{"banco": "sicredi"},
		))
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}

	router := newExtratoRouter(&fakeReconciler{err: &erp.APIError{Message: "Filial inválida"}})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/conciliar-pix", []upload{{"jan.xlsx", sicrediWorkbook(t)}}, nil))
	assert.Equal(t, "Filial inválida", decode(t, w).Message)
}

func TestHandleExportReconciliation(t *testing.T) {
	paid := 100.0
	rec := &fakeReconciler{report: &domain.ReconciliationReport{Results: []domain.ReconciliationResult{
		{Record: domain.ReceivableRecord{InvoiceNumber: 1, PaidValue: &paid}, SettlementDate: "10/01/2024", PaidValue: paid, StatementIndex: -1},
	}}}
	router := newExtratoRouter(rec)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/conciliar-pix/exportar",
		[]upload{{"jan.xlsx", sicrediWorkbook(t)}},
		map[string]string{"banco": "sicredi", "formato": "xlsx"},
	))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "attachment; filename=ConciliacaoPix_20240201.xlsx", w.Header().Get("Content-Disposition"))

	rec.report = &domain.ReconciliationReport{}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/conciliar-pix/exportar",
		[]upload{{"jan.xlsx", sicrediWorkbook(t)}},
		map[string]string{"banco": "sicredi"},
	))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
