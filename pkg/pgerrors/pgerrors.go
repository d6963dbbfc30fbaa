// Package pgerrors разбор ошибок PostgreSQL (lib/pq) по SQLSTATE
package pgerrors

import (
	"errors"

	"github.com/lib/pq"
)

// Коды SQLSTATE, которые сервис обрабатывает явно
const (
	CodeUniqueViolation      = pq.ErrorCode("23505")
	CodeExclusionViolation   = pq.ErrorCode("23P01")
	CodeForeignKeyViolation  = pq.ErrorCode("23503")
	CodeSerializationFailure = pq.ErrorCode("40001")
	CodeDeadlockDetected     = pq.ErrorCode("40P01")
)

// AsPQ достает *pq.Error из цепочки ошибок
func AsPQ(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

// IsConstraintViolation сообщает, нарушено ли ограничение constraint
// (уникальный индекс или exclusion constraint)
func IsConstraintViolation(err error, constraint string) bool {
	pqErr, ok := AsPQ(err)
	if !ok {
		return false
	}
	if pqErr.Code != CodeUniqueViolation && pqErr.Code != CodeExclusionViolation {
		return false
	}
	return pqErr.Constraint == constraint
}

// IsForeignKeyViolation сообщает о нарушении внешнего ключа
func IsForeignKeyViolation(err error) bool {
	pqErr, ok := AsPQ(err)
	return ok && pqErr.Code == CodeForeignKeyViolation
}

// IsRetryable сообщает, что транзакцию можно повторить целиком
func IsRetryable(err error) bool {
	pqErr, ok := AsPQ(err)
	if !ok {
		return false
	}
	return pqErr.Code == CodeSerializationFailure || pqErr.Code == CodeDeadlockDetected
}
