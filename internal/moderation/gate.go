// Package moderation decides who may drive a post through review.
package moderation

import (
	"context"
	"errors"
	"fmt"

	"community-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Gate answers whether a principal may moderate. Implementations must
// consult the authoritative record on every call.
type Gate interface {
	IsAdmin(ctx context.Context, userID bson.ObjectID) (bool, error)
}

// UserGate reads the is_admin flag from the users collection.
type UserGate struct {
	Users repository.UserRepository
}

func NewUserGate(users repository.UserRepository) *UserGate {
	return &UserGate{Users: users}
}

func (g *UserGate) IsAdmin(ctx context.Context, userID bson.ObjectID) (bool, error) {
	if userID.IsZero() {
		return false, nil
	}
	u, err := g.Users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load user %s: %w", userID.Hex(), err)
	}
	return u.IsAdmin, nil
}
