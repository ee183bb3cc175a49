package cursor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2024, 2, 3, 4, 5, 6, 7_000_000, time.UTC)
	id := bson.NewObjectID()

	gotAt, gotID, err := Decode(Encode(at, id))

	require.NoError(t, err)
	assert.True(t, at.Equal(gotAt))
	assert.Equal(t, id, gotID)
}

func TestDecodeGarbage(t *testing.T) {
	for _, s := range []string{"%%%", "bm90LWpzb24=", "eyJpZCI6Inp6In0="} {
		_, _, err := Decode(s)
		assert.Error(t, err, s)
	}
}
