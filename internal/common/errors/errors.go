package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeConfiguration      ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeCasinoNotFound     ErrorCode = "CASINO_NOT_FOUND"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeMissingTone        ErrorCode = "MISSING_TONE"
	ErrCodeMissingReference   ErrorCode = "MISSING_REFERENCE"
	ErrCodeMissingDayMarkers  ErrorCode = "MISSING_DAY_MARKERS"
	ErrCodeModel              ErrorCode = "MODEL_ERROR"
	ErrCodeEmptyModelResponse ErrorCode = "EMPTY_MODEL_RESPONSE"
	ErrCodeAuth               ErrorCode = "AUTH_ERROR"
	ErrCodeTooManyAttempts    ErrorCode = "TOO_MANY_ATTEMPTS"
	ErrCodeBadRequest         ErrorCode = "BAD_REQUEST"
	ErrCodeStore              ErrorCode = "STORE_ERROR"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// Kind is the coarse error taxonomy callers branch on.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindNotFound      Kind = "not_found"
	KindValidation    Kind = "validation"
	KindModel         Kind = "model"
	KindAuth          Kind = "auth"
	KindInternal      Kind = "internal"
)

// StandardError is the structured error surfaced to callers. Message is
// operator-facing (Portuguese); Metadata carries diagnostics such as
// missingDays or availableCasinos and is flattened into the response body.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// With adds a diagnostic field and returns the same error.
func (e *StandardError) With(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func (e *StandardError) Kind() Kind {
	switch e.Code {
	case ErrCodeConfiguration:
		return KindConfiguration
	case ErrCodeCasinoNotFound:
		return KindNotFound
	case ErrCodeValidation, ErrCodeMissingTone, ErrCodeMissingReference, ErrCodeMissingDayMarkers, ErrCodeBadRequest:
		return KindValidation
	case ErrCodeModel, ErrCodeEmptyModelResponse:
		return KindModel
	case ErrCodeAuth, ErrCodeTooManyAttempts:
		return KindAuth
	default:
		return KindInternal
	}
}

func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeAuth:
		return http.StatusUnauthorized
	case ErrCodeTooManyAttempts:
		return http.StatusTooManyRequests
	case ErrCodeCasinoNotFound:
		return http.StatusNotFound
	case ErrCodeValidation, ErrCodeMissingTone, ErrCodeMissingReference, ErrCodeMissingDayMarkers:
		return http.StatusUnprocessableEntity
	case ErrCodeModel, ErrCodeEmptyModelResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewConfigurationError(details string) *StandardError {
	return newError(ErrCodeConfiguration, "Configuração do servidor ausente.", details, false)
}

func NewCasinoNotFoundError(casino string, triedKeys, available []string) *StandardError {
	return newError(ErrCodeCasinoNotFound, "Cassino não encontrado no banco de prompts.", "casino: "+casino, false).
		With("casino", casino).
		With("triedKeys", triedKeys).
		With("availableCasinos", available)
}

func NewValidationError(message, details string) *StandardError {
	return newError(ErrCodeValidation, message, details, false)
}

func NewMissingToneError(casino string) *StandardError {
	return newError(ErrCodeMissingTone, "Tom de voz do cassino não configurado.", "casino: "+casino, false).
		With("matchedCasino", casino)
}

func NewMissingReferenceError(casino string, missing []string) *StandardError {
	return newError(ErrCodeMissingReference, "Copy de referência ausente para este funil.",
		"missing: "+strings.Join(missing, ", "), false).
		With("matchedCasino", casino).
		With("missingRefKeys", missing)
}

func NewMissingDayMarkersError(found, missing []int) *StandardError {
	return newError(ErrCodeMissingDayMarkers, "Template de referência sem todos os dias do funil.",
		fmt.Sprintf("found=%v missing=%v", found, missing), false).
		With("foundDays", found).
		With("missingDays", missing)
}

// NewModelError keeps the cause out of the user-facing message.
func NewModelError(err error) *StandardError {
	e := newError(ErrCodeModel, "Falha ao gerar a copy. Tente novamente.", err.Error(), true)
	e.cause = err
	return e
}

func NewEmptyModelResponseError(details string) *StandardError {
	return newError(ErrCodeEmptyModelResponse, "O modelo retornou uma resposta vazia. Tente novamente.", details, true)
}

func NewAuthError() *StandardError {
	return newError(ErrCodeAuth, "Não autorizado.", "", false)
}

func NewTooManyAttemptsError(retryAfter time.Duration) *StandardError {
	return newError(ErrCodeTooManyAttempts, "Muitas tentativas. Aguarde e tente novamente.", "", false).
		With("retryAfterSeconds", int(retryAfter.Seconds()))
}

func NewBadRequestError(details string) *StandardError {
	return newError(ErrCodeBadRequest, "Requisição inválida.", details, false)
}

func NewStoreError(err error) *StandardError {
	e := newError(ErrCodeStore, "Falha ao consultar o banco de prompts.", err.Error(), true)
	e.cause = err
	return e
}

func NewInternalError(err error) *StandardError {
	e := newError(ErrCodeInternal, "Erro inesperado.", err.Error(), false)
	e.cause = err
	return e
}

// As extracts a *StandardError from err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Normalize wraps any error into a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// GetRetryCount is the number of job retries a worker grants for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeModel, ErrCodeEmptyModelResponse, ErrCodeStore:
		return 1
	default:
		return 0
	}
}

// BPMNError is what a job worker throws back to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the process variables set alongside a failure.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ConvertToBPMNError carries the diagnostics in Metadata over as variables.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func GetErrorCategory(code ErrorCode) string {
	switch (&StandardError{Code: code}).Kind() {
	case KindConfiguration:
		return "CONFIGURATION"
	case KindNotFound:
		return "CASINO"
	case KindValidation:
		return "VALIDATION"
	case KindModel:
		return "AI"
	case KindAuth:
		return "AUTH"
	default:
		if code == ErrCodeStore {
			return "DATABASE"
		}
		return "OTHER"
	}
}
