package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyView indica que não há linhas para exportar.
var ErrEmptyView = errors.New("nenhuma linha para exportar")

// FormatError indica que o layout da planilha não foi reconhecido.
type FormatError struct {
	File   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	if e.File == "" {
		return "formato de planilha inválido: " + msg
	}
	return fmt.Sprintf("formato de planilha inválido em %s: %s", e.File, msg)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
