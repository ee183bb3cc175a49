package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string        `bson:"email" json:"email"`
	DisplayName  string        `bson:"display_name" json:"displayName"`
	PasswordHash string        `bson:"password_hash,omitempty" json:"-"`
	IsAdmin      bool          `bson:"is_admin" json:"isAdmin"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
}
