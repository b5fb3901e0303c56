package erp

import (
	"errors"
	"fmt"
)

// HTTPError indica uma resposta não-2xx do ERP.
type HTTPError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("erp %s: status HTTP %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("erp %s: status HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
}

// NetworkError indica falha de transporte (DNS, conexão, timeout).
type NetworkError struct {
	Operation string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("erp %s: falha de comunicação: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError indica uma resposta com success=false.
type APIError struct {
	Operation string
	Message   string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("erp %s: requisição recusada", e.Operation)
	}
	return fmt.Sprintf("erp %s: %s", e.Operation, e.Message)
}

// ResponseShapeError indica que o corpo não tem o formato esperado para o endpoint.
type ResponseShapeError struct {
	Operation string
	Expected  string
	Err       error
}

func (e *ResponseShapeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("erp %s: resposta fora do formato esperado (%s)", e.Operation, e.Expected)
	}
	return fmt.Sprintf("erp %s: resposta fora do formato esperado (%s): %v", e.Operation, e.Expected, e.Err)
}

func (e *ResponseShapeError) Unwrap() error { return e.Err }

// ValidationError indica parâmetros inválidos, detectados antes de qualquer chamada.
type ValidationError struct {
	Operation string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("erp %s: parâmetros inválidos: %v", e.Operation, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsUpstream informa se o erro veio do ERP (rede, status, success=false ou formato).
func IsUpstream(err error) bool {
	var (
		httpErr  *HTTPError
		netErr   *NetworkError
		apiErr   *APIError
		shapeErr *ResponseShapeError
	)
	return errors.As(err, &httpErr) || errors.As(err, &netErr) ||
		errors.As(err, &apiErr) || errors.As(err, &shapeErr)
}
