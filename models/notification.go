package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookswap-api/apperror"
	"bookswap-api/helpers"
	"bookswap-api/lookups"
)

// Notification is embedded in a user's document. It references a document in
// another collection polymorphically via docId/docType.
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	From      primitive.ObjectID `json:"from" bson:"from"`
	DocID     primitive.ObjectID `json:"docId" bson:"docId"`
	DocType   string             `json:"docType" bson:"docType"`   // borrow | user_rate
	NotiType  string             `json:"notiType" bson:"notiType"` // create | update | delete | verify
	Seen      bool               `json:"seen" bson:"seen"`
	CreatedTS time.Time          `json:"createdTS" bson:"createdTS"`
}

// NotificationModel writes to the users collection (notifications live there);
// the other collections are only consulted for the docId existence gate
type NotificationModel struct {
	Client             *mongo.Client
	UserCollection     *mongo.Collection
	BorrowCollection   *mongo.Collection
	UserRateCollection *mongo.Collection
}

// CreateNotification validates the referenced document against the collection
// implied by docType, then pushes the sub-document onto the target user.
// an invalid docId never results in a notification being appended
func (m NotificationModel) CreateNotification(toOID primitive.ObjectID, fromOID primitive.ObjectID, docID primitive.ObjectID, docType string, notiType string) error {

	if !lookups.DocTypeValid(docType) {
		return ErrInvalidDocType
	}
	if !lookups.NotiTypeValid(notiType) {
		return ErrInvalidNotiType
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// existence gate on the referenced document
	var refCol *mongo.Collection
	switch docType {
	case lookups.DTborrow:
		refCol = m.BorrowCollection
	case lookups.DTuserRate:
		refCol = m.UserRateCollection
	}

	fields := bson.D{{Key: "_id", Value: 1}}

	ref := struct {
		ID primitive.ObjectID `bson:"_id"`
	}{}

	err := refCol.FindOne(ctx, bson.M{"_id": docID}, options.FindOne().SetProjection(fields)).Decode(&ref)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrReferencedDocMissing
		}
		return helpers.WrapError(err, helpers.FuncName())
	}

	notification := Notification{
		ID:        primitive.NewObjectID(),
		From:      fromOID,
		DocID:     docID,
		DocType:   docType,
		NotiType:  notiType,
		Seen:      false,
		CreatedTS: time.Now(),
	}

	filter := bson.D{{Key: "_id", Value: toOID}}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "notifications", Value: notification}}}}

	result, err := m.UserCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.ModifiedCount != 1 {
		return apperror.ErrUpdateFailed
	}

	return nil
}

// ListNotifications returns the embedded notifications of a user
func (m NotificationModel) ListNotifications(userOID primitive.ObjectID) ([]Notification, error) {

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "notifications", Value: 1},
	}

	data := struct {
		Notifications []Notification `bson:"notifications"`
	}{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.UserCollection.FindOne(ctx, bson.M{"_id": userOID}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if len(data.Notifications) == 0 {
		return nil, apperror.ErrNoData
	}

	return data.Notifications, nil
}

// MarkSeen sets seen=true via a positional update.
// matched-but-not-modified means the notification was already seen - that is
// an idempotent no-op, not an error
func (m NotificationModel) MarkSeen(userOID primitive.ObjectID, notificationID string) error {

	nid, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return apperror.ErrIDNotValid
	}

	filter := bson.D{
		{Key: "_id", Value: userOID},
		{Key: "notifications._id", Value: nid},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "notifications.$.seen", Value: true}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.UserCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.MatchedCount == 0 {
		return ErrNotificationNotFound
	}

	// ModifiedCount == 0 here means seen was already true
	return nil
}

// DeleteNotification pulls the sub-document by id
func (m NotificationModel) DeleteNotification(userOID primitive.ObjectID, notificationID string) error {

	nid, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return apperror.ErrIDNotValid
	}

	filter := bson.D{{Key: "_id", Value: userOID}}
	update := bson.D{
		{Key: "$pull", Value: bson.D{
			{Key: "notifications", Value: bson.D{{Key: "_id", Value: nid}}},
		}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.UserCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	// not modified means the id wasn't present on that user
	if result.ModifiedCount == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
