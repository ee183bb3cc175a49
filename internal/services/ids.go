package services

import (
	"strings"
	"time"

	"community-backend/internal/apperr"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// parseID treats a malformed id the same as an unknown one.
func parseID(hex, what string) (bson.ObjectID, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return bson.NilObjectID, apperr.Invalid(what + " is required")
	}
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, apperr.NotFound(what + " not found")
	}
	return id, nil
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
