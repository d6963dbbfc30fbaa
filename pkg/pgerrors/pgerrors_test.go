package pgerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsConstraintViolation(t *testing.T) {
	exclusion := &pq.Error{Code: CodeExclusionViolation, Constraint: "bookings_resource_slot_excl"}
	unique := &pq.Error{Code: CodeUniqueViolation, Constraint: "bookings_vehicle_active_uniq"}
	wrapped := fmt.Errorf("insert: %w", exclusion)

	assert.True(t, IsConstraintViolation(exclusion, "bookings_resource_slot_excl"))
	assert.True(t, IsConstraintViolation(wrapped, "bookings_resource_slot_excl"))
	assert.True(t, IsConstraintViolation(unique, "bookings_vehicle_active_uniq"))
	assert.False(t, IsConstraintViolation(unique, "bookings_resource_slot_excl"))
	assert.False(t, IsConstraintViolation(errors.New("plain"), "bookings_resource_slot_excl"))
	assert.False(t, IsConstraintViolation(&pq.Error{Code: CodeForeignKeyViolation, Constraint: "x"}, "x"))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pq.Error{Code: CodeSerializationFailure}))
	assert.True(t, IsRetryable(fmt.Errorf("commit: %w", &pq.Error{Code: CodeDeadlockDetected})))
	assert.False(t, IsRetryable(&pq.Error{Code: CodeUniqueViolation}))
	assert.False(t, IsRetryable(errors.New("timeout")))
}
