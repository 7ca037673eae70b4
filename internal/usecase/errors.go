package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"portal/internal/domain/model"
	repo "portal/internal/repository"
	"portal/internal/validator"

	"go.uber.org/zap"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeBadRequest         = "BAD_REQUEST"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	// 422 のときだけ入る
	Details validator.Violations
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    codeForStatus(status),
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusConflict:
		return CodeInvalidTransition
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusBadRequest:
		return CodeBadRequest
	default:
		return CodePersistenceFailure
	}
}

// 検証エラーは全件まとめて返す
func newValidationError(vs validator.Violations) error {
	return &HTTPError{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeValidation,
		Message: "validation failed",
		Details: vs,
	}
}

func newTransitionError(err error) error {
	var te *model.TransitionError
	if errors.As(err, &te) {
		return &HTTPError{Status: http.StatusConflict, Code: CodeInvalidTransition, Message: te.Error()}
	}
	return &HTTPError{Status: http.StatusConflict, Code: CodeInvalidTransition, Message: "invalid transition"}
}

// repo.ErrNotFound だけ404にする。それ以外はそのまま返してtxError側で500にする
func notFoundOr(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return err
}

// 一意制約違反は入力の問題として422で返す（障害として記録しない）
func duplicateOr(err error, field, value string) error {
	if errors.Is(err, repo.ErrDuplicate) {
		return newValidationError(validator.Violations{{
			Code:    validator.CodeValidation,
			Field:   field,
			Message: fmt.Sprintf("%s %q is already in use", field, value),
		}})
	}
	return err
}

// WithinTx の戻り値を呼び出し側へ返す形にそろえる。
// HTTPError 以外はDB側の失敗として記録し、詳細は返さない。
func txError(log *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	log.Error("transaction failed", zap.String("op", op), zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "persistence failure")
}
