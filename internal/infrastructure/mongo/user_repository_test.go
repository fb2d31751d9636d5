package mongo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// email の upsert が並行実行で重複ドキュメントを生まないことは一意インデックスが前提。
// このインデックス定義が崩れると EnsureUser / UpdateRoleByEmail の契約ごと崩れる。
func TestUserEmailIndexIsUnique(t *testing.T) {
	model := userEmailIndex()

	keys, ok := model.Keys.(bson.D)
	require.True(t, ok)
	require.Len(t, keys, 1)
	assert.Equal(t, "email", keys[0].Key)
	assert.Equal(t, 1, keys[0].Value)

	require.NotNil(t, model.Options)
	require.NotNil(t, model.Options.Unique)
	assert.True(t, *model.Options.Unique)
}

func TestEnsureUserOutcome(t *testing.T) {
	duplicateKey := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	}
	require.True(t, mongo.IsDuplicateKeyError(duplicateKey))

	t.Run("upsert inserted", func(t *testing.T) {
		created, err := ensureUserOutcome(&mongo.UpdateResult{UpsertedCount: 1}, nil)
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("matched existing", func(t *testing.T) {
		created, err := ensureUserOutcome(&mongo.UpdateResult{MatchedCount: 1}, nil)
		require.NoError(t, err)
		assert.False(t, created)
	})

	// 並行 upsert の敗者は重複キーで弾かれるが、ドキュメントは存在するので既存扱い。
	t.Run("duplicate key means existing", func(t *testing.T) {
		created, err := ensureUserOutcome(nil, duplicateKey)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("other errors are retryable", func(t *testing.T) {
		created, err := ensureUserOutcome(nil, errors.New("socket closed"))
		assert.ErrorIs(t, err, domain.ErrUnavailable)
		assert.False(t, created)
	})
}
