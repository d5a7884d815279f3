package authorization

// Functions to check permissions
// without dependencies to the User Model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookswap-api/lookups"
)

// Credentials is the minimal user projection attached to a request while it is
// being handled (never contains the password hash)
type Credentials struct {
	UserID   primitive.ObjectID `json:"userID" bson:"_id"`
	Username string             `json:"username" bson:"username"`
	RoleCode int32              `json:"roleCode" bson:"roleCD"`
	userCol  *mongo.Collection
}

// SetConnections is called in Env Model Initializiation
func (c *Credentials) SetConnections(mongoCollections map[string]*mongo.Collection) {
	c.userCol = mongoCollections["users"]
}

// GetCredentials returns account infos to control permissions.
// any error is reported as "no such user" via the boolean flag
func (c *Credentials) GetCredentials(userOID primitive.ObjectID) (*Credentials, bool) {
	var credentials Credentials

	fields := bson.D{
		{Key: "_id", Value: 1},
		{Key: "username", Value: 1},
		{Key: "roleCD", Value: 1},
	}

	opts := options.FindOne().SetProjection(fields)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := c.userCol.FindOne(ctx, bson.M{"_id": userOID}, opts).Decode(&credentials)
	if err != nil {
		return nil, false
	}

	return &credentials, true
}

// IsAdmin is a convenience wrapper over the role code
func (c *Credentials) IsAdmin() bool {
	return c.RoleCode == lookups.URadmin
}
