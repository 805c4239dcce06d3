package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
)

// Reason уточняет причину конфликта или отказа, стабильна для клиентов.
type Reason string

const (
	ReasonGigClosed       Reason = "gig_closed"
	ReasonDuplicateBid    Reason = "duplicate_bid"
	ReasonSelfBid         Reason = "self_bid"
	ReasonNotOwner        Reason = "not_owner"
	ReasonAlreadyAssigned Reason = "already_assigned"
	ReasonBidUnavailable  Reason = "bid_unavailable"
	ReasonEmailTaken      Reason = "email_taken"
)

type AppError struct {
	Code       ErrorCode
	Reason     Reason
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и причине, а не по указателю:
// обёрнутая копия ErrDuplicateBid остаётся ErrDuplicateBid.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Reason == t.Reason && (t.Reason != "" || e.Message == t.Message)
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func NewWithReason(code ErrorCode, reason Reason, message string) *AppError {
	return &AppError{
		Code:       code,
		Reason:     reason,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// WithCause возвращает копию ошибки с прикреплённой причиной.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Cause = err
	return &cp
}

// Internal заворачивает неожиданную ошибку хранилища. Уже типизированные ошибки не трогает.
func Internal(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Wrap(err, ErrCodeInternal, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool   { return hasCode(err, ErrCodeNotFound) }
func IsForbidden(err error) bool  { return hasCode(err, ErrCodeForbidden) }
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }
func IsConflict(err error) bool   { return hasCode(err, ErrCodeConflict) }
func IsInternal(err error) bool   { return hasCode(err, ErrCodeInternal) }

// ReasonOf возвращает причину ошибки или пустую строку.
func ReasonOf(err error) Reason {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

var (
	ErrGigNotFound  = New(ErrCodeNotFound, "заказ не найден")
	ErrBidNotFound  = New(ErrCodeNotFound, "отклик не найден")
	ErrUserNotFound = New(ErrCodeNotFound, "пользователь не найден")

	ErrGigClosed       = NewWithReason(ErrCodeConflict, ReasonGigClosed, "заказ больше не принимает отклики")
	ErrDuplicateBid    = NewWithReason(ErrCodeConflict, ReasonDuplicateBid, "вы уже откликнулись на этот заказ")
	ErrAlreadyAssigned = NewWithReason(ErrCodeConflict, ReasonAlreadyAssigned, "исполнитель по заказу уже выбран")
	ErrBidUnavailable  = NewWithReason(ErrCodeConflict, ReasonBidUnavailable, "отклик больше не доступен")
	ErrEmailTaken      = NewWithReason(ErrCodeConflict, ReasonEmailTaken, "email уже зарегистрирован")

	ErrSelfBid   = NewWithReason(ErrCodeForbidden, ReasonSelfBid, "нельзя откликнуться на собственный заказ")
	ErrNotOwner  = NewWithReason(ErrCodeForbidden, ReasonNotOwner, "действие доступно только владельцу заказа")
	ErrForbidden = New(ErrCodeForbidden, "недостаточно прав")

	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверные учетные данные")
)
