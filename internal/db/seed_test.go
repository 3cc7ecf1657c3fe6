package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yla-umzug/quotes-service/internal/db"
	"github.com/yla-umzug/quotes-service/internal/db/dbtest"
	"github.com/yla-umzug/quotes-service/internal/model"
)

func TestSeedIsIdempotent(t *testing.T) {
	database := dbtest.Open(t, true)

	require.NoError(t, database.Model(&model.Setting{}).
		Where(map[string]any{"group_name": "umzug", "key": "base_price"}).
		Update("value", "175").Error)

	require.NoError(t, db.Seed(database))

	var count int64
	require.NoError(t, database.Model(&model.Setting{}).Count(&count).Error)
	assert.Equal(t, int64(len(db.DefaultSettings)), count)

	var setting model.Setting
	require.NoError(t, database.Where(map[string]any{"group_name": "umzug", "key": "base_price"}).First(&setting).Error)
	assert.Equal(t, "175", setting.Value)

	var services int64
	require.NoError(t, database.Model(&model.Service{}).Count(&services).Error)
	assert.Equal(t, int64(3), services)
}
