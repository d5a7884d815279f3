package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"bookswap-api/apperror"
	"bookswap-api/helpers"
	"bookswap-api/lookups"
)

// UserRate is a thumbs up/down one participant of a verified borrow gives the other
type UserRate struct {
	ID      primitive.ObjectID `json:"id" bson:"_id"`
	From    primitive.ObjectID `json:"from" bson:"from"`
	To      primitive.ObjectID `json:"to" bson:"to"`
	Borrow  primitive.ObjectID `json:"borrow" bson:"borrow"`
	Rate    bool               `json:"rate" bson:"rate"`
	Comment string             `json:"comment,omitempty" bson:"comment,omitempty"`
}

// UserRateModel provides the logic to the interface and access to the database.
// a create touches three stores in a fixed order: userRates (parent), the
// borrow, then both users - each write is acknowledged before the next one
// is issued so a miss can be detected, but nothing is rolled back
type UserRateModel struct {
	Client           *mongo.Client
	Collection       *mongo.Collection
	BorrowCollection *mongo.Collection
	UserCollection   *mongo.Collection
	// injected from the notification model (package de-coupling)
	CreateNotification func(toOID primitive.ObjectID, fromOID primitive.ObjectID, docID primitive.ObjectID, docType string, notiType string) error
}

// CreateUserRate creates a rating against a verified borrow.
//
// the verified flag is checked here only - a borrow that is un-verified later
// does not invalidate existing rates. a second rate for the same
// (borrow, from, to) triple is NOT blocked, matching the original system.
func (m UserRateModel) CreateUserRate(fromOID primitive.ObjectID, toOID primitive.ObjectID, borrowID string, rate bool, comment string) (*UserRate, error) {

	bid, err := primitive.ObjectIDFromHex(borrowID)
	if err != nil {
		return nil, apperror.ErrIDNotValid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. gate on the borrow's verified flag
	borrow := struct {
		ID       primitive.ObjectID `bson:"_id"`
		Verified bool               `bson:"verified"`
	}{}

	err = m.BorrowCollection.FindOne(ctx, bson.M{"_id": bid}).Decode(&borrow)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBorrowNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if !borrow.Verified {
		return nil, ErrBorrowNotVerified
	}

	// 2. create the rating document (parent-first)
	userRate := UserRate{
		ID:      primitive.NewObjectID(),
		From:    fromOID,
		To:      toOID,
		Borrow:  bid,
		Rate:    rate,
		Comment: comment,
	}

	_, err = m.Collection.InsertOne(ctx, userRate)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// 3. reference it on the borrow
	filter := bson.D{{Key: "_id", Value: bid}}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "userRates", Value: userRate.ID}}}}

	result, err := m.BorrowCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if result.ModifiedCount != 1 {
		return nil, apperror.ErrUpdateFailed
	}

	// 4. reference it on both users (rater: userRates.from, ratee: userRates.to)
	models := []mongo.WriteModel{
		mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: fromOID}}).
			SetUpdate(bson.D{{Key: "$push", Value: bson.D{{Key: "userRates.from", Value: userRate.ID}}}}),
		mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: toOID}}).
			SetUpdate(bson.D{{Key: "$push", Value: bson.D{{Key: "userRates.to", Value: userRate.ID}}}}),
	}

	bulk, err := m.UserCollection.BulkWrite(ctx, models)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if bulk.ModifiedCount != 2 {
		return nil, apperror.ErrUpdateFailed
	}

	// 5. tell the ratee
	err = m.CreateNotification(toOID, fromOID, userRate.ID, lookups.DTuserRate, lookups.NTcreate)
	if err != nil {
		return nil, err
	}

	return &userRate, nil
}

// GetUserRate returns one
func (m UserRateModel) GetUserRate(rateID string) (*UserRate, error) {

	id, err := primitive.ObjectIDFromHex(rateID)
	if err != nil {
		return nil, apperror.ErrIDNotValid
	}

	data := UserRate{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserRateNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &data, nil
}

// ListUserRates returns the ratings a user gave ("from") or received ("to")
func (m UserRateModel) ListUserRates(userOID primitive.ObjectID, direction string) ([]UserRate, error) {

	field := "to"
	if direction == "from" {
		field = "from"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{field: userOID})
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var rates []UserRate

	err = cursor.All(ctx, &rates)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if rates == nil {
		return nil, apperror.ErrNoData
	}

	return rates, nil
}

// ListByBorrow returns the ratings created against a borrow
func (m UserRateModel) ListByBorrow(borrowID string) ([]UserRate, error) {

	id, err := primitive.ObjectIDFromHex(borrowID)
	if err != nil {
		return nil, apperror.ErrIDNotValid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{"borrow": id})
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var rates []UserRate

	err = cursor.All(ctx, &rates)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if rates == nil {
		return nil, apperror.ErrNoData
	}

	return rates, nil
}

// ListAll returns a page of all ratings (admin listing)
func (m UserRateModel) ListAll(paginator *helpers.Paginator) ([]UserRate, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.D{}, paginator.FindOptions())
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var rates []UserRate

	err = cursor.All(ctx, &rates)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if rates == nil {
		return nil, apperror.ErrNoData
	}

	return rates, nil
}

// ModifyUserRate patches rate/comment.
// only the original author may patch (matched against from AND to); the admin
// surface passes asAdmin=true and matches the id only
func (m UserRateModel) ModifyUserRate(toID string, rateID string, sessionOID primitive.ObjectID, rate *bool, comment *string, asAdmin bool) error {

	rid, err := primitive.ObjectIDFromHex(rateID)
	if err != nil {
		return apperror.ErrIDNotValid
	}

	filter := bson.D{{Key: "_id", Value: rid}}
	if !asAdmin {
		uid, err := primitive.ObjectIDFromHex(toID)
		if err != nil {
			return apperror.ErrIDNotValid
		}
		filter = append(filter,
			bson.E{Key: "from", Value: sessionOID},
			bson.E{Key: "to", Value: uid})
	}

	fields := bson.D{}
	if rate != nil {
		fields = append(fields, bson.E{Key: "rate", Value: *rate})
	}
	if comment != nil {
		fields = append(fields, bson.E{Key: "comment", Value: *comment})
	}

	if len(fields) == 0 {
		return apperror.ErrNoData
	}

	update := bson.D{{Key: "$set", Value: fields}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.MatchedCount == 0 {
		return ErrUserRateNotOwned
	}

	return nil
}

// DeleteUserRate removes the rating and pulls its id from the borrow and from
// both users' userRates lists. any step failing after the delete has committed
// leaves orphaned references - reported as UpdateFailed, never compensated
func (m UserRateModel) DeleteUserRate(toID string, rateID string, sessionOID primitive.ObjectID, asAdmin bool) error {

	rid, err := primitive.ObjectIDFromHex(rateID)
	if err != nil {
		return apperror.ErrIDNotValid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// the document is read first: its borrow/from/to are needed for the pulls
	filter := bson.M{"_id": rid}
	if !asAdmin {
		uid, err := primitive.ObjectIDFromHex(toID)
		if err != nil {
			return apperror.ErrIDNotValid
		}
		filter = bson.M{"_id": rid, "from": sessionOID, "to": uid}
	}

	userRate := UserRate{}

	err = m.Collection.FindOne(ctx, filter).Decode(&userRate)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrUserRateNotFound
		}
		return helpers.WrapError(err, helpers.FuncName())
	}

	// 1. delete the rating (parent-first)
	result, err := m.Collection.DeleteOne(ctx, bson.M{"_id": rid})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.DeletedCount != 1 {
		// raced with a concurrent delete
		return ErrUserRateNotFound
	}

	// 2. pull it from the borrow
	upd, err := m.BorrowCollection.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userRate.Borrow}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "userRates", Value: rid}}}})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if upd.ModifiedCount != 1 {
		return apperror.ErrUpdateFailed
	}

	// 3. pull it from both users
	models := []mongo.WriteModel{
		mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: userRate.From}}).
			SetUpdate(bson.D{{Key: "$pull", Value: bson.D{{Key: "userRates.from", Value: rid}}}}),
		mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: userRate.To}}).
			SetUpdate(bson.D{{Key: "$pull", Value: bson.D{{Key: "userRates.to", Value: rid}}}}),
	}

	bulk, err := m.UserCollection.BulkWrite(ctx, models)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if bulk.ModifiedCount != 2 {
		return apperror.ErrUpdateFailed
	}

	return nil
}
