package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UIDFromLocals returns the user_id set by the JWT middleware.
func UIDFromLocals(c *fiber.Ctx) (string, error) {
	uid, _ := c.Locals(LocalUserID).(string)
	if uid == "" {
		return "", fiber.ErrUnauthorized
	}
	return uid, nil
}

// UIDObjectID returns the user_id from Locals as a bson.ObjectID.
func UIDObjectID(c *fiber.Ctx) (bson.ObjectID, error) {
	uid, err := UIDFromLocals(c)
	if err != nil {
		return bson.NilObjectID, err
	}
	oid, err := bson.ObjectIDFromHex(uid)
	if err != nil {
		return bson.NilObjectID, fiber.ErrUnauthorized
	}
	return oid, nil
}

// ViewerID is UIDObjectID for routes that also serve anonymous callers;
// it returns the zero id instead of an error.
func ViewerID(c *fiber.Ctx) bson.ObjectID {
	oid, _ := UIDObjectID(c)
	return oid
}
