package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"bookswap-api/apperror"
	"bookswap-api/helpers"
)

// Borrow links two users and a set of books. Its verified flag gates the
// creation of user rates against it.
type Borrow struct {
	ID       primitive.ObjectID   `json:"id" bson:"_id"`
	From     primitive.ObjectID   `json:"from" bson:"from"` // lender
	To       primitive.ObjectID   `json:"to" bson:"to"`     // borrower
	Books    []primitive.ObjectID `json:"books" bson:"books"`
	Verified bool                 `json:"verified" bson:"verified"`
	// ids of userRates documents created against this borrow; must equal the
	// set of documents whose borrow field points here
	UserRates []primitive.ObjectID `json:"userRates" bson:"userRates"`
}

// BorrowModel provides the logic to the interface and access to the database
type BorrowModel struct {
	Client         *mongo.Client
	Collection     *mongo.Collection
	UserCollection *mongo.Collection
}

// Validate checks given values (immutable)
func (m BorrowModel) Validate(borrow Borrow) (*Borrow, error) {

	cleaned := borrow

	if len(cleaned.Books) == 0 {
		return nil, ErrBorrowNoBooks
	}

	return &cleaned, nil
}

// CreateBorrow inserts the borrow document, then pushes its id onto both
// participants' borrows lists in a single bulk update. both follow-up updates
// must land (count == 2) or the call reports UpdateFailed - the borrow itself
// stays committed either way
func (m BorrowModel) CreateBorrow(borrow *Borrow) (string, error) {

	borrow.ID = primitive.NewObjectID()
	borrow.Verified = false
	borrow.UserRates = []primitive.ObjectID{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := m.Collection.InsertOne(ctx, borrow)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	filter := bson.D{
		{Key: "_id", Value: bson.D{
			{Key: "$in", Value: bson.A{borrow.From, borrow.To}},
		}},
	}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "borrows", Value: borrow.ID}}}}

	result, err := m.UserCollection.UpdateMany(ctx, filter, update)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	if result.ModifiedCount != 2 {
		return "", apperror.ErrUpdateFailed
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// GetBorrow returns one
func (m BorrowModel) GetBorrow(borrowID string) (*Borrow, error) {

	id, err := primitive.ObjectIDFromHex(borrowID)
	if err != nil {
		return nil, apperror.ErrIDNotValid
	}

	data := Borrow{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBorrowNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &data, nil
}

// ListBorrows returns a page of all borrows (admin listing)
func (m BorrowModel) ListBorrows(paginator *helpers.Paginator) ([]Borrow, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.D{}, paginator.FindOptions())
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var borrows []Borrow

	err = cursor.All(ctx, &borrows)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if borrows == nil {
		return nil, apperror.ErrNoData
	}

	return borrows, nil
}

// ListBorrowsByUser returns the borrows a user participates in (either side)
func (m BorrowModel) ListBorrowsByUser(userOID primitive.ObjectID) ([]Borrow, error) {

	filter := bson.M{
		"$or": bson.A{
			bson.M{"from": userOID},
			bson.M{"to": userOID},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var borrows []Borrow

	err = cursor.All(ctx, &borrows)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if borrows == nil {
		return nil, apperror.ErrNoData
	}

	return borrows, nil
}

// ModifyBorrow patches the borrow, usually to set the verified flag.
// verification is checked at rate-creation time only; un-verifying later does
// not invalidate rates that already exist
func (m BorrowModel) ModifyBorrow(borrowID string, verified *bool, books []primitive.ObjectID) (*Borrow, error) {

	id, err := primitive.ObjectIDFromHex(borrowID)
	if err != nil {
		return nil, apperror.ErrIDNotValid
	}

	fields := bson.D{}
	if verified != nil {
		fields = append(fields, bson.E{Key: "verified", Value: *verified})
	}
	if books != nil {
		fields = append(fields, bson.E{Key: "books", Value: books})
	}

	if len(fields) == 0 {
		return nil, apperror.ErrNoData
	}

	filter := bson.D{{Key: "_id", Value: id}}
	update := bson.D{{Key: "$set", Value: fields}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if result.MatchedCount != 1 {
		return nil, ErrBorrowNotFound
	}

	return m.GetBorrow(borrowID)
}

// DeleteBorrow removes the borrow and pulls its id from both participants.
// userRates documents created against it keep their borrow reference
// (soft orphaning, matching the original system)
func (m BorrowModel) DeleteBorrow(borrowID string) error {

	borrow, err := m.GetBorrow(borrowID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.DeleteOne(ctx, bson.M{"_id": borrow.ID})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.DeletedCount != 1 {
		return ErrBorrowNotFound
	}

	filter := bson.D{
		{Key: "_id", Value: bson.D{
			{Key: "$in", Value: bson.A{borrow.From, borrow.To}},
		}},
	}
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "borrows", Value: borrow.ID}}}}

	upd, err := m.UserCollection.UpdateMany(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if upd.ModifiedCount != 2 {
		return apperror.ErrUpdateFailed
	}

	return nil
}
