package bootstrap

import (
	"testing"

	"community-backend/internal/quota"
	"community-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectnessIndexesAreUnique(t *testing.T) {
	idx := Indexes()

	for _, col := range []string{quota.CollectionName, repository.ColLikes, repository.ColUsers} {
		models := idx[col]
		require.NotEmpty(t, models, col)
		require.NotNil(t, models[0].Options, col)
	}
	assert.Len(t, idx, 6)
}
