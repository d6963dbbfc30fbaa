package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Select("id", "status").
		From("bookings").
		Where(squirrel.Eq{"vehicle_id": int64(7)}).
		Where(squirrel.Eq{"status": []string{"PROGRAMADO", "EN_PROCESO"}}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id, status FROM bookings WHERE vehicle_id = $1 AND status IN ($2,$3)", query)
	assert.Equal(t, []interface{}{int64(7), "PROGRAMADO", "EN_PROCESO"}, args)
}

func TestUpdate_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Update("resources").
		Set("active", false).
		Where(squirrel.Eq{"id": int64(3)}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE resources SET active = $1 WHERE id = $2", query)
	assert.Equal(t, []interface{}{false, int64(3)}, args)
}
