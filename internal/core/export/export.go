// Package export gera os arquivos (.xlsx e .csv) das visões da aplicação.
//
// Cada visão tem colunas fixas. Na planilha os valores monetários são células
// numéricas; no CSV são textos no formato "R$ 1.234,56".
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"financeiro-service/internal/core/money"
	"financeiro-service/internal/core/textutil"
	"financeiro-service/internal/domain"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Format é o tipo de arquivo gerado.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat aceita "xlsx" ou "csv" (sem diferenciar maiúsculas). Vazio vale xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("formato de exportação inválido: %q (use xlsx ou csv)", s)
	}
}

// ContentType devolve o MIME type do formato.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=windows-1252"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileName monta o nome do arquivo: <prefixo>[_<banco>]_<AAAAMMDD>.<ext>.
func FileName(prefix, bank string, now time.Time, f Format) string {
	parts := []string{prefix}
	if bank != "" {
		parts = append(parts, strings.ToLower(bank))
	}
	parts = append(parts, now.Format("20060102"))
	return strings.Join(parts, "_") + "." + string(f)
}

// value é uma célula: texto ou valor monetário (nil = célula vazia).
type value struct {
	text    string
	amount  *float64
	isMoney bool
}

func text(s string) value { return value{text: s} }

func amount(v *float64) value { return value{amount: v, isMoney: true} }

func amountOf(v float64) value { return amount(&v) }

type table struct {
	sheet  string
	header []string
	rows   [][]value
}

func (t table) render(f Format) ([]byte, error) {
	if len(t.rows) == 0 {
		return nil, domain.ErrEmptyView
	}
	switch f {
	case FormatCSV:
		return t.csv()
	case FormatXLSX:
		return t.xlsx()
	default:
		return nil, fmt.Errorf("formato de exportação não suportado: %s", f)
	}
}

// csv grava em Windows-1252 com ';' como separador.
func (t table) csv() ([]byte, error) {
	var buffer bytes.Buffer
	// caracteres fora do cp1252 são substituídos, sem abortar a exportação
	encoder := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	tw := transform.NewWriter(&buffer, encoder)
	writer := csv.NewWriter(tw)
	writer.Comma = ';'

	header := make([]string, len(t.header))
	for i, h := range t.header {
		header[i] = textutil.SanitizeForCSV(h)
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, row := range t.rows {
		record := make([]string, len(row))
		for i, v := range row {
			switch {
			case !v.isMoney:
				record[i] = textutil.SanitizeForCSV(v.text)
			case v.amount != nil:
				record[i] = money.FormatBRL(*v.amount)
			}
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (t table) xlsx() ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(0), t.sheet); err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	sw, err := f.NewStreamWriter(t.sheet)
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, len(t.header))
	for i, h := range t.header {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, err
	}

	for r, row := range t.rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			switch {
			case !v.isMoney:
				cells[i] = v.text
			case v.amount != nil:
				cells[i] = excelize.Cell{StyleID: moneyStyle, Value: *v.amount}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
