package handlers

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"financeiro-service/internal/core/ingest"
	"financeiro-service/internal/core/summary"
	"financeiro-service/internal/domain"

	"github.com/gin-gonic/gin"
)

const statementFilesField = "extratoFiles"

// openStatementFiles abre os arquivos de extrato do formulário, na ordem de envio.
// O closer devolvido fecha todos os arquivos abertos.
func openStatementFiles(c *gin.Context) ([]ingest.File, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, fmt.Errorf("formulário multipart inválido: %w", err)
	}
	headers := form.File[statementFilesField]
	if len(headers) == 0 {
		return nil, func() {}, ingest.ErrNoFiles
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]ingest.File, 0, len(headers))
	for _, header := range headers {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".xls" && ext != ".xlsx" {
			closeAll()
			return nil, func() {}, fmt.Errorf("extensão de arquivo não suportada: %s (%s)", ext, header.Filename)
		}
		file, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("não foi possível abrir o arquivo %s: %w", header.Filename, err)
		}
		opened = append(opened, file)
		files = append(files, ingest.File{Name: header.Filename, Reader: file})
	}
	return files, closeAll, nil
}

// viewStateFromForm monta o estado da tela a partir dos campos do formulário.
func viewStateFromForm(c *gin.Context) (summary.ViewState, error) {
	actions := []summary.Action{
		summary.SetFilter{Filter: summary.Filter{
			Query:    strings.TrimSpace(c.PostForm("busca")),
			Kind:     domain.EntryKind(strings.TrimSpace(c.PostForm("tipo"))),
			Category: domain.Category(strings.TrimSpace(c.PostForm("categoria"))),
			DateFrom: strings.TrimSpace(c.PostForm("dataInicio")),
			DateTo:   strings.TrimSpace(c.PostForm("dataFim")),
		}},
	}

	if field := summary.SortField(strings.TrimSpace(c.PostForm("ordenarPor"))); field != summary.SortNone {
		if !field.Valid() {
			return summary.ViewState{}, fmt.Errorf("campo de ordenação inválido: %s", field)
		}
		desc := strings.EqualFold(strings.TrimSpace(c.PostForm("ordem")), "desc")
		actions = append(actions, summary.SetSort{Sort: summary.Sort{Field: field, Desc: desc}})
	}

	if v := strings.TrimSpace(c.PostForm("porPagina")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return summary.ViewState{}, fmt.Errorf("porPagina inválido: %s", v)
		}
		actions = append(actions, summary.SetPerPage{PerPage: n})
	}
	if v := strings.TrimSpace(c.PostForm("pagina")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return summary.ViewState{}, fmt.Errorf("pagina inválida: %s", v)
		}
		actions = append(actions, summary.SetPage{Page: n})
	}

	return summary.Reduce(summary.DefaultViewState(), actions...), nil
}

// parseIntList converte "1, 2,3" em []int; vazio devolve nil.
func parseIntList(field, raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%s: valor inválido '%s'", field, trimmed)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseOptionalInt(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: valor inválido '%s'", field, raw)
	}
	return n, nil
}
