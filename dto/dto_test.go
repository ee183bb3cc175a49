package dto

import (
	"encoding/json"
	"testing"
	"time"

	"community-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestIsApprovedFollowsStatus(t *testing.T) {
	p := &models.Post{ID: bson.NewObjectID(), Status: models.PostPending, CreatedAt: time.Now()}
	assert.False(t, NewPostResponse(p).IsApproved)

	p.Status = models.PostApproved
	assert.True(t, NewPostResponse(p).IsApproved)

	p.Status = models.PostRejected
	assert.False(t, NewPostResponse(p).IsApproved)
}

func TestPostResponseTagsNeverNull(t *testing.T) {
	raw, err := json.Marshal(NewPostResponse(&models.Post{Status: models.PostPending}))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, []any{}, m["tags"])
	assert.NotContains(t, m, "approvedAt")
}
