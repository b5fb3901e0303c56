package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/record"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"
)

var errNoSheets = errors.New("a planilha não contém abas")

// cell é uma célula da primeira aba: o texto exibido e, quando a célula é
// numérica, o valor gravado no arquivo (sem o formato de exibição).
type cell struct {
	text   string
	number *float64
}

type sheetRow []cell

// text devolve o texto exibido da coluna, sem espaços nas pontas.
func (r sheetRow) text(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col].text)
}

// value devolve o número bruto quando a célula é numérica, senão o texto.
func (r sheetRow) value(col int) any {
	if col >= 0 && col < len(r) && r[col].number != nil {
		return *r[col].number
	}
	return r.text(col)
}

// loadFirstSheet lê apenas a primeira aba do arquivo. O .xlsx é aberto com o
// excelize; se falhar, o conteúdo é lido como .xls legado.
func loadFirstSheet(file io.Reader) ([]sheetRow, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	rows, xlsxErr := readXLSX(data)
	if xlsxErr == nil || errors.Is(xlsxErr, errNoSheets) {
		return rows, xlsxErr
	}
	rows, err = readXLS(data)
	if err != nil {
		return nil, fmt.Errorf("formato de planilha não suportado (xlsx: %v; xls: %w)", xlsxErr, err)
	}
	return rows, nil
}

func readXLSX(data []byte) ([]sheetRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoSheets
	}
	sheet := sheets[0]

	display, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	rows := make([]sheetRow, len(display))
	for i, cols := range display {
		row := make(sheetRow, len(cols))
		for j, text := range cols {
			row[j].text = text
			if i >= len(raw) || j >= len(raw[i]) {
				continue
			}
			n, err := strconv.ParseFloat(strings.TrimSpace(raw[i][j]), 64)
			if err != nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			// texto que parece número (célula de string) continua sendo texto
			if typ, err := f.GetCellType(sheet, name); err == nil && (typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber) {
				row[j].number = &n
			}
		}
		rows[i] = row
	}
	return rows, nil
}

func readXLS(data []byte) ([]sheetRow, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, errNoSheets
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("erro ao obter a primeira aba do .xls: %w", err)
	}

	var rows []sheetRow
	for _, r := range sheet.GetRows() {
		var row sheetRow
		for _, c := range r.GetCols() {
			row = append(row, xlsCell(c))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func xlsCell(c structure.CellData) cell {
	out := cell{text: c.GetString()}
	switch c.(type) {
	case *record.Number, *record.Rk:
		n := c.GetFloat64()
		out.number = &n
	}
	return out
}
