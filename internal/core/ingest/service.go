package ingest

import (
	"errors"
	"fmt"
	"io"

	"financeiro-service/internal/domain"
	"financeiro-service/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoFiles indica que a importação foi chamada sem arquivos.
var ErrNoFiles = errors.New("nenhum arquivo de extrato enviado")

// File é um arquivo de extrato enviado pelo usuário.
type File struct {
	Name   string
	Reader io.Reader
}

// Service define a interface de leitura de extratos bancários.
type Service interface {
	// Import lê todos os arquivos, na ordem de envio, e concatena os lançamentos.
	// Falhas de formato ficam registradas por arquivo; o erro só é devolvido
	// quando nenhum arquivo pôde ser lido.
	Import(files []File, bank string) (*domain.ImportBatch, error)
	// ParseFile lê um único arquivo com o leitor do banco informado.
	ParseFile(file File, bank string) (domain.StatementHeader, []domain.StatementEntry, []domain.ParseWarning, error)
}

type service struct {
	logger *zap.Logger
}

// NewService cria uma nova instância do serviço de importação.
func NewService(logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{logger: logger}
}

func (svc *service) ParseFile(file File, bank string) (domain.StatementHeader, []domain.StatementEntry, []domain.ParseWarning, error) {
	bankID, parser, _ := resolveBank(bank)
	return svc.parseWith(file, bankID, parser, 0)
}

func (svc *service) parseWith(file File, bankID string, parser Parser, fileIdx int) (domain.StatementHeader, []domain.StatementEntry, []domain.ParseWarning, error) {
	rows, err := loadFirstSheet(file.Reader)
	if err != nil {
		return domain.StatementHeader{}, nil, nil, &domain.FormatError{File: file.Name, Reason: "não foi possível ler a planilha", Err: err}
	}

	rc := &rowContext{bank: bankID, file: file.Name, fileIdx: fileIdx}
	header, entries, err := parser.Parse(rows, rc)
	if err != nil {
		return domain.StatementHeader{}, nil, rc.warnings, err
	}
	return header, entries, rc.warnings, nil
}

func (svc *service) Import(files []File, bank string) (*domain.ImportBatch, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	bankID, parser, known := resolveBank(bank)
	batch := &domain.ImportBatch{
		BatchID: uuid.NewString(),
		Bank:    bankID,
		Files:   make([]domain.FileOutcome, 0, len(files)),
	}
	if !known {
		msg := fmt.Sprintf("banco '%s' sem leitor dedicado; usando leitor genérico", bank)
		if s := suggestBank(bank); s != "" {
			msg += fmt.Sprintf(" (você quis dizer '%s'?)", s)
		}
		batch.Warnings = append(batch.Warnings, domain.ParseWarning{Message: msg})
		svc.logger.Warn("banco sem leitor dedicado", zap.String("bank", bank))
	}

	var failures []error
	for i, file := range files {
		header, entries, warnings, err := svc.parseWith(file, bankID, parser, i)
		batch.Warnings = append(batch.Warnings, warnings...)
		if i == 0 && err == nil {
			batch.Header = header
		}
		if err != nil {
			failures = append(failures, err)
			batch.Files = append(batch.Files, domain.FileOutcome{Name: file.Name, Error: err.Error()})
			metrics.ObserveImport(bankID, "format_error", 0)
			svc.logger.Warn("falha ao ler extrato", zap.String("file", file.Name), zap.Error(err))
			continue
		}
		batch.Entries = append(batch.Entries, entries...)
		batch.Files = append(batch.Files, domain.FileOutcome{Name: file.Name, Entries: len(entries)})
		metrics.ObserveImport(bankID, "success", len(entries))
	}

	batch.Entries = svc.keepLeadingPriorBalance(batch)

	if len(failures) == len(files) {
		return batch, errors.Join(failures...)
	}

	svc.logger.Info("extrato importado",
		zap.String("batch_id", batch.BatchID),
		zap.String("bank", bankID),
		zap.Int("files", len(files)),
		zap.Int("entries", len(batch.Entries)),
		zap.Int("warnings", len(batch.Warnings)))
	return batch, nil
}

// keepLeadingPriorBalance garante no máximo um saldo anterior por lote, sempre na primeira posição.
func (svc *service) keepLeadingPriorBalance(batch *domain.ImportBatch) []domain.StatementEntry {
	var prior *domain.StatementEntry
	out := make([]domain.StatementEntry, 0, len(batch.Entries))
	for _, e := range batch.Entries {
		if e.Kind != domain.KindBalance {
			out = append(out, e)
			continue
		}
		if prior != nil {
			batch.Warnings = append(batch.Warnings, domain.ParseWarning{
				File:    e.Source,
				Message: "saldo anterior de arquivo adicional ignorado",
			})
			continue
		}
		p := e
		prior = &p
	}
	if prior == nil {
		return out
	}
	return append([]domain.StatementEntry{*prior}, out...)
}
