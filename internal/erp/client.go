// Package erp é o cliente HTTP da API do ERP (TOTVS).
//
// Toda resposta tem o formato {success, data, message}. Cada endpoint tem um
// formato canônico para data; qualquer outro formato é ResponseShapeError.
package erp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"financeiro-service/internal/domain"
	"financeiro-service/internal/metrics"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	opSearchReceivables = "search_receivables"
	opLookupPersons     = "lookup_persons"
	opLedgerExtract     = "ledger_extract"
	opPersonOrders      = "person_orders"
	opDanfe             = "danfe"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// PersonCache guarda nomes de pessoas já consultadas.
type PersonCache interface {
	GetPersons(ctx context.Context, codes []int) (map[int]domain.Person, error)
	SetPersons(ctx context.Context, persons []domain.Person) error
}

// Client encapsula as chamadas à API do ERP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	group      singleflight.Group
	persons    PersonCache
	logger     *zap.Logger
}

// Option configura o Client.
type Option func(*Client)

// WithTimeout define o timeout de cada requisição.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient substitui o http.Client usado nas chamadas.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithPersonCache ativa o cache de pessoas.
func WithPersonCache(pc PersonCache) Option {
	return func(c *Client) { c.persons = pc }
}

// WithLogger define o logger do cliente.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient cria o cliente apontando para baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		validate:   validator.New(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// SearchReceivables busca títulos do contas a receber.
// Buscas idênticas simultâneas são feitas uma única vez.
func (c *Client) SearchReceivables(ctx context.Context, f ReceivableFilter) ([]domain.ReceivableRecord, error) {
	if err := c.validate.Struct(f); err != nil {
		return nil, &ValidationError{Operation: opSearchReceivables, Err: err}
	}
	q := f.query()

	key := opSearchReceivables + "?" + q.Encode()
	// a busca compartilhada não herda o cancelamento de quem a iniciou;
	// o timeout do http.Client continua valendo
	flightCtx := context.WithoutCancel(ctx)
	resultChan := c.group.DoChan(key, func() (interface{}, error) {
		data, err := c.do(flightCtx, opSearchReceivables, http.MethodGet, "/accounts-receivable/search", q, nil)
		if err != nil {
			return nil, err
		}
		return decodeList[domain.ReceivableRecord](opSearchReceivables, data)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		records := res.Val.([]domain.ReceivableRecord)
		out := make([]domain.ReceivableRecord, len(records))
		copy(out, records)
		return out, nil
	}
}

// LookupPersons busca o cadastro das pessoas informadas.
// Códigos repetidos são consultados uma vez; pessoas em cache não vão ao ERP.
func (c *Client) LookupPersons(ctx context.Context, codes []int) ([]domain.Person, error) {
	codes = uniqueCodes(codes)
	req := personBatchRequest{PersonCodes: codes}
	if err := c.validate.Struct(req); err != nil {
		return nil, &ValidationError{Operation: opLookupPersons, Err: err}
	}

	found := map[int]domain.Person{}
	if c.persons != nil {
		cached, err := c.persons.GetPersons(ctx, codes)
		if err != nil {
			c.logger.Warn("falha ao ler cache de pessoas", zap.Error(err))
		} else {
			found = cached
		}
	}

	var missing []int
	for _, code := range codes {
		if _, ok := found[code]; !ok {
			missing = append(missing, code)
		}
	}

	if len(missing) > 0 {
		data, err := c.do(ctx, opLookupPersons, http.MethodPost, "/persons/batch", nil, personBatchRequest{PersonCodes: missing})
		if err != nil {
			return nil, err
		}
		fetched, err := decodeList[domain.Person](opLookupPersons, data)
		if err != nil {
			return nil, err
		}
		for _, p := range fetched {
			found[p.Code] = p
		}
		if c.persons != nil && len(fetched) > 0 {
			if err := c.persons.SetPersons(ctx, fetched); err != nil {
				c.logger.Warn("falha ao gravar cache de pessoas", zap.Error(err))
			}
		}
	}

	persons := make([]domain.Person, 0, len(found))
	for _, code := range codes {
		if p, ok := found[code]; ok {
			persons = append(persons, p)
		}
	}
	return persons, nil
}

// LedgerExtract busca o extrato de razão das contas contábeis.
func (c *Client) LedgerExtract(ctx context.Context, f LedgerFilter) ([]domain.LedgerEntry, error) {
	if err := c.validate.Struct(f); err != nil {
		return nil, &ValidationError{Operation: opLedgerExtract, Err: err}
	}
	data, err := c.do(ctx, opLedgerExtract, http.MethodGet, "/ledger/extract", f.query(), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.LedgerEntry](opLedgerExtract, data)
}

// PersonOrders lista os pedidos de uma pessoa.
func (c *Client) PersonOrders(ctx context.Context, personCode int) ([]domain.Order, error) {
	if err := c.validate.Var(personCode, "required,gt=0"); err != nil {
		return nil, &ValidationError{Operation: opPersonOrders, Err: err}
	}
	path := "/persons/" + strconv.Itoa(personCode) + "/orders"
	data, err := c.do(ctx, opPersonOrders, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Order](opPersonOrders, data)
}

// Danfe gera o PDF do DANFE e devolve os bytes já decodificados.
func (c *Client) Danfe(ctx context.Context, req DanfeRequest) ([]byte, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, &ValidationError{Operation: opDanfe, Err: err}
	}
	data, err := c.do(ctx, opDanfe, http.MethodPost, "/fiscal/danfe", nil, req)
	if err != nil {
		return nil, err
	}
	resp, err := decodeObject[danfeResponse](opDanfe, data)
	if err != nil {
		return nil, err
	}
	if resp.PDFBase64 == "" {
		return nil, &ResponseShapeError{Operation: opDanfe, Expected: "objeto com pdfBase64"}
	}
	pdf, err := base64.StdEncoding.DecodeString(resp.PDFBase64)
	if err != nil {
		return nil, &ResponseShapeError{Operation: opDanfe, Expected: "pdfBase64 em base64", Err: err}
	}
	return pdf, nil
}

// do executa a requisição e devolve o campo data do envelope.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("erp %s: erro ao serializar corpo: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("erp %s: erro ao montar requisição: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveERP(op, "network_error", time.Since(start))
		return nil, &NetworkError{Operation: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	metrics.ObserveERP(op, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, &NetworkError{Operation: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Operation: op, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ResponseShapeError{Operation: op, Expected: "envelope {success, data, message}", Err: err}
	}
	if !env.Success {
		return nil, &APIError{Operation: op, Message: env.Message}
	}

	c.logger.Debug("chamada ao ERP concluída",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return env.Data, nil
}

// errorMessage extrai a mensagem do envelope de erro, ou um trecho do corpo.
func errorMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}

// decodeList exige um array JSON; data ausente ou null vira lista vazia.
func decodeList[T any](op string, data json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] != '[' {
		return nil, &ResponseShapeError{Operation: op, Expected: "array"}
	}
	out := []T{}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, &ResponseShapeError{Operation: op, Expected: "array", Err: err}
	}
	return out, nil
}

// decodeObject exige um objeto JSON.
func decodeObject[T any](op string, data json.RawMessage) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return out, &ResponseShapeError{Operation: op, Expected: "objeto"}
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, &ResponseShapeError{Operation: op, Expected: "objeto", Err: err}
	}
	return out, nil
}

func uniqueCodes(codes []int) []int {
	seen := make(map[int]struct{}, len(codes))
	out := make([]int, 0, len(codes))
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
