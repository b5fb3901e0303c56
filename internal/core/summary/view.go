// Package summary deriva a visão da tela de extrato (filtro, ordenação,
// paginação) e os totais exibidos nos cards.
package summary

import (
	"math"
	"sort"
	"strings"
	"time"

	"financeiro-service/internal/core/classify"
	"financeiro-service/internal/core/textutil"
	"financeiro-service/internal/domain"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 500
	dateLayout     = "02/01/2006"
)

// SortField é a coluna usada na ordenação.
type SortField string

const (
	SortNone        SortField = ""
	SortDate        SortField = "date"
	SortDescription SortField = "description"
	SortAmount      SortField = "amount"
	SortBalance     SortField = "balance"
)

// Valid informa se o campo é conhecido.
func (f SortField) Valid() bool {
	switch f {
	case SortNone, SortDate, SortDescription, SortAmount, SortBalance:
		return true
	}
	return false
}

// Filter restringe as linhas visíveis. Campos vazios não filtram.
type Filter struct {
	Query    string           `json:"query,omitempty"`
	Kind     domain.EntryKind `json:"kind,omitempty"`
	Category domain.Category  `json:"category,omitempty"`
	DateFrom string           `json:"date_from,omitempty"`
	DateTo   string           `json:"date_to,omitempty"`
}

// Sort define a ordenação da visão.
type Sort struct {
	Field SortField `json:"field,omitempty"`
	Desc  bool      `json:"desc,omitempty"`
}

// ViewState é o estado completo da tela, sempre alterado via Reduce.
type ViewState struct {
	Filter  Filter `json:"filter"`
	Sort    Sort   `json:"sort"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// DefaultViewState devolve o estado inicial: sem filtro, ordem de importação, página 1.
func DefaultViewState() ViewState {
	return ViewState{Page: 1, PerPage: DefaultPerPage}
}

// Action é uma transição de estado.
type Action interface {
	apply(ViewState) ViewState
}

type SetFilter struct{ Filter Filter }

type SetSort struct{ Sort Sort }

type SetPage struct{ Page int }

type SetPerPage struct{ PerPage int }

type Reset struct{}

func (a SetFilter) apply(s ViewState) ViewState {
	s.Filter = a.Filter
	s.Page = 1
	return s
}

func (a SetSort) apply(s ViewState) ViewState {
	if !a.Sort.Field.Valid() {
		return s
	}
	s.Sort = a.Sort
	return s
}

func (a SetPage) apply(s ViewState) ViewState {
	if a.Page < 1 {
		a.Page = 1
	}
	s.Page = a.Page
	return s
}

func (a SetPerPage) apply(s ViewState) ViewState {
	switch {
	case a.PerPage <= 0:
		s.PerPage = DefaultPerPage
	case a.PerPage > MaxPerPage:
		s.PerPage = MaxPerPage
	default:
		s.PerPage = a.PerPage
	}
	s.Page = 1
	return s
}

func (Reset) apply(ViewState) ViewState {
	return DefaultViewState()
}

// Reduce aplica as ações em ordem e devolve o novo estado. O estado recebido não é alterado.
func Reduce(state ViewState, actions ...Action) ViewState {
	for _, a := range actions {
		if a == nil {
			continue
		}
		state = a.apply(state)
	}
	return state
}

// Pagination contém os metadados da página atual.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination calcula os metadados de paginação.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// View é o resultado de aplicar o estado sobre os lançamentos.
// Rows tem todas as linhas filtradas e ordenadas; PageRows só a página atual.
type View struct {
	State      ViewState               `json:"state"`
	Rows       []domain.StatementEntry `json:"-"`
	PageRows   []domain.StatementEntry `json:"rows"`
	Pagination Pagination              `json:"pagination"`
}

// Apply filtra, ordena e pagina os lançamentos sem alterar a entrada.
func Apply(entries []domain.StatementEntry, state ViewState) View {
	rows := filterEntries(entries, state.Filter)
	sortEntries(rows, state.Sort)

	p := NewPagination(state.Page, state.PerPage, len(rows))
	start := (p.Page - 1) * p.PerPage
	end := start + p.PerPage
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}

	return View{
		State:      state,
		Rows:       rows,
		PageRows:   rows[start:end],
		Pagination: p,
	}
}

func filterEntries(entries []domain.StatementEntry, f Filter) []domain.StatementEntry {
	query := textutil.FoldLower(f.Query)
	from, hasFrom := parseDate(f.DateFrom)
	to, hasTo := parseDate(f.DateTo)

	out := make([]domain.StatementEntry, 0, len(entries))
	for _, e := range entries {
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		if f.Category != "" && (e.Kind != domain.KindCredit || classify.Categorize(e.Description) != f.Category) {
			continue
		}
		if query != "" &&
			!strings.Contains(textutil.FoldLower(e.Description), query) &&
			!strings.Contains(textutil.FoldLower(e.Document), query) {
			continue
		}
		if hasFrom || hasTo {
			d, ok := parseDate(e.Date)
			if !ok || (hasFrom && d.Before(from)) || (hasTo && d.After(to)) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func sortEntries(rows []domain.StatementEntry, s Sort) {
	var less func(a, b domain.StatementEntry) bool
	switch s.Field {
	case SortDate:
		less = lessByDate
	case SortDescription:
		less = func(a, b domain.StatementEntry) bool {
			return textutil.FoldLower(a.Description) < textutil.FoldLower(b.Description)
		}
	case SortAmount:
		less = func(a, b domain.StatementEntry) bool { return a.Value() < b.Value() }
	case SortBalance:
		less = func(a, b domain.StatementEntry) bool { return balanceOf(a) < balanceOf(b) }
	default:
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if s.Desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

// lessByDate compara pela data quando ambas são DD/MM/YYYY; datas inválidas vão para o fim.
func lessByDate(a, b domain.StatementEntry) bool {
	da, okA := parseDate(a.Date)
	db, okB := parseDate(b.Date)
	switch {
	case okA && okB:
		return da.Before(db)
	case okA != okB:
		return okA
	default:
		return a.Date < b.Date
	}
}

func balanceOf(e domain.StatementEntry) float64 {
	if e.Balance == nil {
		return 0
	}
	return *e.Balance
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
