package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yla-umzug/quotes-service/internal/db/dbtest"
	"github.com/yla-umzug/quotes-service/internal/model"
)

func TestSettingRepositoryUpsert(t *testing.T) {
	repo := NewSettingRepository(dbtest.Open(t, true))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.Setting{Group: "umzug", Key: "base_price", Value: "199", Type: model.SettingTypeDecimal}))
	require.NoError(t, repo.Upsert(ctx, &model.Setting{Group: "umzug", Key: "new_key", Value: "1", Type: model.SettingTypeBoolean}))

	got, err := repo.Find(ctx, "umzug", "base_price")
	require.NoError(t, err)
	assert.Equal(t, "199", got.Value)

	created, err := repo.Find(ctx, "umzug", "new_key")
	require.NoError(t, err)
	assert.Equal(t, model.SettingTypeBoolean, created.Type)

	public, err := repo.ListPublic(ctx)
	require.NoError(t, err)
	for _, s := range public {
		assert.True(t, s.IsPublic, "%s.%s", s.Group, s.Key)
	}
}
