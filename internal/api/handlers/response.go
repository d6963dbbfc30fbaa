// Package handlers общие функции HTTP слоя: разбор запроса и запись ответов
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgInvalidID     = "некорректный идентификатор"
)

// Коды ошибок в теле ответа
const (
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeSlotConflict      = "SLOT_CONFLICT"
	CodeDuplicateRequest  = "DUPLICATE_ACTIVE_REQUEST"
	CodeVehicleInWorkshop = "VEHICLE_ALREADY_IN_WORKSHOP"
	CodePendingTasks      = "PENDING_TASKS"
	CodeVehicleUnknown    = "VEHICLE_UNKNOWN"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeTooManyRequests   = "TOO_MANY_REQUESTS"
	CodeInternal          = "INTERNAL"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code,omitempty"`
	Retryable bool                   `json:"retryable,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// DecodeJSON разбирает тело запроса; неизвестные поля считаются ошибкой
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// DecodeOptionalJSON как DecodeJSON, но пустое тело допустимо
func DecodeOptionalJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return DecodeJSON(r, dst)
}

// PathID извлекает положительный int64 из переменной пути
func PathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// RespondJSON пишет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondError пишет ошибку с сообщением
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondBadRequest 400
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeValidation})
}

// RespondInvalidID 400 для некорректного идентификатора в пути
func RespondInvalidID(w http.ResponseWriter) {
	RespondBadRequest(w, msgInvalidID)
}

// RespondUnauthorized 401
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: message, Code: CodeUnauthorized})
}

// RespondForbidden 403
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusForbidden, ErrorResponse{Error: message, Code: CodeForbidden})
}

// RespondNotFound 404
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusNotFound, ErrorResponse{Error: message, Code: CodeNotFound})
}

// RespondConflict 409
func RespondConflict(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusConflict, ErrorResponse{Error: message, Code: CodeConflict})
}

// RespondInternalError 500 без подробностей
func RespondInternalError(w http.ResponseWriter) {
	RespondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgInternalError, Code: CodeInternal})
}

// RespondDomainError переводит ошибку предметной области в HTTP ответ и возвращает статус
// Всё, что не распознано, отдаётся как 500
func RespondDomainError(w http.ResponseWriter, err error) int {
	status, body := mapDomainError(err)
	RespondJSON(w, status, body)
	return status
}

func mapDomainError(err error) (int, ErrorResponse) {
	var (
		notFound   *domain.NotFoundError
		transition *domain.IllegalTransitionError
		conflict   *domain.SlotConflictError
		duplicate  *domain.DuplicateActiveRequestError
		inWorkshop *domain.VehicleAlreadyInWorkshopError
		pending    *domain.PendingTasksError
		validation *domain.ValidationError
		unknown    *domain.VehicleUnknownError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorResponse{
			Error:   validation.Error(),
			Code:    CodeValidation,
			Details: map[string]interface{}{"field": validation.Field, "reason": validation.Reason},
		}
	case errors.As(err, &notFound):
		return http.StatusNotFound, ErrorResponse{
			Error:   notFound.Error(),
			Code:    CodeNotFound,
			Details: map[string]interface{}{"entity": notFound.Entity, "id": notFound.ID},
		}
	case errors.As(err, &transition):
		details := map[string]interface{}{
			"entity": transition.Entity,
			"id":     transition.ID,
			"from":   transition.From,
			"action": transition.Action,
		}
		if transition.Reason != "" {
			details["reason"] = transition.Reason
		}
		return http.StatusConflict, ErrorResponse{Error: transition.Error(), Code: CodeIllegalTransition, Details: details}
	case errors.As(err, &conflict):
		return http.StatusConflict, ErrorResponse{
			Error:     conflict.Error(),
			Code:      CodeSlotConflict,
			Retryable: true,
			Details: map[string]interface{}{
				"resourceId": conflict.ResourceID,
				"start":      conflict.Start.Format(time.RFC3339),
			},
		}
	case errors.As(err, &duplicate):
		return http.StatusConflict, ErrorResponse{
			Error:   duplicate.Error(),
			Code:    CodeDuplicateRequest,
			Details: map[string]interface{}{"vehicleId": duplicate.VehicleID, "plate": duplicate.Plate},
		}
	case errors.As(err, &inWorkshop):
		return http.StatusConflict, ErrorResponse{
			Error:   inWorkshop.Error(),
			Code:    CodeVehicleInWorkshop,
			Details: map[string]interface{}{"vehicleId": inWorkshop.VehicleID, "plate": inWorkshop.Plate},
		}
	case errors.As(err, &pending):
		return http.StatusConflict, ErrorResponse{
			Error:   pending.Error(),
			Code:    CodePendingTasks,
			Details: map[string]interface{}{"bookingId": pending.BookingID, "count": pending.Count},
		}
	case errors.As(err, &unknown):
		return http.StatusNotFound, ErrorResponse{
			Error:   unknown.Error(),
			Code:    CodeVehicleUnknown,
			Details: map[string]interface{}{"plate": unknown.Plate},
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: msgInternalError, Code: CodeInternal}
	}
}
