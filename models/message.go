package models

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"bookswap-api/apperror"
	"bookswap-api/helpers"
)

// MessageContent is one entry of a conversation
type MessageContent struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id"`
	Sender    primitive.ObjectID   `json:"sender" bson:"sender"`
	Content   string               `json:"content" bson:"content"`
	CreatedTS time.Time            `json:"createdTS" bson:"createdTS"`
	SeenBy    []primitive.ObjectID `json:"seenBy" bson:"seenBy"`
}

// Message is a conversation between two users, embedded contents included.
// the websocket relay is outside of the API; this model only persists
type Message struct {
	ID       primitive.ObjectID   `json:"id" bson:"_id"`
	Users    []primitive.ObjectID `json:"users" bson:"users"`
	Contents []MessageContent     `json:"contents" bson:"contents"`
}

// MessageModel provides the logic to the interface and access to the database
type MessageModel struct {
	Client         *mongo.Client
	Collection     *mongo.Collection
	UserCollection *mongo.Collection
}

// Validate checks given values (immutable)
func (m MessageModel) Validate(content string) (string, error) {

	cleaned := strings.TrimSpace(content)

	if cleaned == "" {
		return "", ErrMessageEmpty
	}

	return cleaned, nil
}

// CreateConversation starts a conversation with a first message, then pushes
// its id onto both participants' messages lists (count == 2 or UpdateFailed,
// the conversation itself stays committed)
func (m MessageModel) CreateConversation(fromOID primitive.ObjectID, toOID primitive.ObjectID, content string) (string, error) {

	message := Message{
		ID:    primitive.NewObjectID(),
		Users: []primitive.ObjectID{fromOID, toOID},
		Contents: []MessageContent{
			{
				ID:        primitive.NewObjectID(),
				Sender:    fromOID,
				Content:   content,
				CreatedTS: time.Now(),
				SeenBy:    []primitive.ObjectID{fromOID},
			},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := m.Collection.InsertOne(ctx, message)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	filter := bson.D{
		{Key: "_id", Value: bson.D{
			{Key: "$in", Value: bson.A{fromOID, toOID}},
		}},
	}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "messages", Value: message.ID}}}}

	result, err := m.UserCollection.UpdateMany(ctx, filter, update)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	if result.ModifiedCount != 2 {
		return "", apperror.ErrUpdateFailed
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// AppendMessage adds a message to an existing conversation.
// the sender must be a participant
func (m MessageModel) AppendMessage(conversationID string, senderOID primitive.ObjectID, content string) (string, error) {

	cid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return "", apperror.ErrIDNotValid
	}

	messageContent := MessageContent{
		ID:        primitive.NewObjectID(),
		Sender:    senderOID,
		Content:   content,
		CreatedTS: time.Now(),
		SeenBy:    []primitive.ObjectID{senderOID},
	}

	filter := bson.D{
		{Key: "_id", Value: cid},
		{Key: "users", Value: senderOID},
	}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "contents", Value: messageContent}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	if result.MatchedCount == 0 {
		return "", ErrConversationNotMember
	}

	return messageContent.ID.Hex(), nil
}

// MarkSeen adds the user to seenBy of every content of the conversation
func (m MessageModel) MarkSeen(conversationID string, userOID primitive.ObjectID) error {

	cid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return apperror.ErrIDNotValid
	}

	filter := bson.D{
		{Key: "_id", Value: cid},
		{Key: "users", Value: userOID},
	}
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "contents.$[].seenBy", Value: userOID}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.MatchedCount == 0 {
		return ErrConversationNotFound
	}

	// not modified = everything was seen already (no-op)
	return nil
}

// ListConversations returns the conversations a user participates in
func (m MessageModel) ListConversations(userOID primitive.ObjectID) ([]Message, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{"users": userOID})
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var messages []Message

	err = cursor.All(ctx, &messages)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if messages == nil {
		return nil, apperror.ErrNoData
	}

	return messages, nil
}
