package models

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookswap-api/apperror"
	"bookswap-api/helpers"
)

// BookRate is a rating embedded in a book's document.
// at most one per (book, from) pair - guarded by RateBook, not by an index
type BookRate struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	From       primitive.ObjectID `json:"from" bson:"from"`
	Rate       int32              `json:"rate" bson:"rate"`
	Comment    string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedTS  time.Time          `json:"createdTS" bson:"createdTS"`
	ModifiedTS *time.Time         `json:"modifiedTS,omitempty" bson:"modifiedTS,omitempty"`
}

// Book is the "interface" used for client communication
type Book struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Uploader  primitive.ObjectID `json:"uploader" bson:"uploader"` // immutable owner
	Author    string             `json:"author" bson:"author"`
	Title     string             `json:"title" bson:"title"`
	Picture   string             `json:"picture,omitempty" bson:"picture,omitempty"`
	Category  string             `json:"category,omitempty" bson:"category,omitempty"`
	Price     float64            `json:"price" bson:"price"`
	ForBorrow bool               `json:"forBorrow" bson:"forBorrow"`
	Available bool               `json:"available" bson:"available"`
	Rates     []BookRate         `json:"rates" bson:"rates"`
}

// BookListItem is the reduced model used for listings
type BookListItem struct {
	ID           primitive.ObjectID `json:"id"`
	CreatedTS    time.Time          `json:"createdTS"`
	Uploader     primitive.ObjectID `json:"uploader"`
	UploaderName string             `json:"uploaderName"`
	Author       string             `json:"author"`
	Title        string             `json:"title"`
	Picture      string             `json:"picture,omitempty"`
	Price        float64            `json:"price"`
	ForBorrow    bool               `json:"forBorrow"`
	Available    bool               `json:"available"`
	RateCount    int                `json:"rateCount"`
}

// BookModel provides the logic to the interface and access to the database.
// UserCollection is written by the rating routines to keep the uploader's/rater's
// back-references in sync (sequential writes, parent-first, no transaction)
type BookModel struct {
	Client         *mongo.Client
	Collection     *mongo.Collection
	UserCollection *mongo.Collection
	GetUserName    func(ID string) (string, error)
}

// Validate checks given values and sets defaults where applicable (immutable)
func (m BookModel) Validate(book Book) (*Book, error) {

	cleaned := book

	cleaned.Author = strings.TrimSpace(cleaned.Author)
	cleaned.Title = strings.TrimSpace(cleaned.Title)

	if cleaned.Title == "" {
		return nil, ErrBookTitleMissing
	}

	return &cleaned, nil
}

// CreateBook adds a book and pushes its id onto the uploader's books list.
// the book document is the parent and is written first; a failing second write
// leaves it in place (reported, not rolled back)
func (m BookModel) CreateBook(book *Book) (string, error) {

	book.ID = primitive.NewObjectID()
	book.Available = true
	book.Rates = []BookRate{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := m.Collection.InsertOne(ctx, book)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	filter := bson.D{{Key: "_id", Value: book.Uploader}}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "books", Value: book.ID}}}}

	result, err := m.UserCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	if result.ModifiedCount != 1 {
		return "", apperror.ErrUpdateFailed
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// GetBook returns one
func (m BookModel) GetBook(bookID string) (*Book, error) {

	id, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return nil, apperror.ErrIDNotValid
	}

	data := Book{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &data, nil
}

// SearchBooks lists or searches the catalog
func (m BookModel) SearchBooks(paginator *helpers.Paginator, forBorrowOnly bool) ([]BookListItem, error) {

	filter := paginator.KeywordFilter("title", "author", "category")

	if forBorrowOnly {
		filter = append(filter, bson.E{Key: "forBorrow", Value: true})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, paginator.FindOptions())
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var books []Book

	err = cursor.All(ctx, &books)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if books == nil {
		return nil, apperror.ErrNoData
	}

	// copy data to reduced list-struct
	var bookList []BookListItem
	var item BookListItem

	for _, b := range books {
		item.ID = b.ID
		item.CreatedTS = primitive.ObjectID.Timestamp(b.ID)
		item.Uploader = b.Uploader
		item.UploaderName, _ = m.GetUserName(b.Uploader.Hex())
		item.Author = b.Author
		item.Title = b.Title
		item.Picture = b.Picture
		item.Price = b.Price
		item.ForBorrow = b.ForBorrow
		item.Available = b.Available
		item.RateCount = len(b.Rates)

		bookList = append(bookList, item)
	}

	return bookList, nil
}

// GetBookRates returns the embedded ratings of a book (public read)
func (m BookModel) GetBookRates(bookID string) ([]BookRate, error) {

	book, err := m.GetBook(bookID)
	if err != nil {
		return nil, err
	}

	if len(book.Rates) == 0 {
		return nil, apperror.ErrNoData
	}

	return book.Rates, nil
}

// RateBook appends a rate sub-document to the book, then records the book in
// the rater's ratedBooks list.
//
// the "already rated" guard and the append are two separate operations
// (check-then-act); two concurrent attempts by the same user can both pass the
// guard. that window exists in the original system and is kept.
func (m BookModel) RateBook(bookID string, userOID primitive.ObjectID, rate int32, comment string) (*BookRate, error) {

	id, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return nil, apperror.ErrIDNotValid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. guard: book must exist, user must not have rated it yet
	fields := bson.D{
		{Key: "_id", Value: 1},
		{Key: "rates", Value: bson.D{
			{Key: "$elemMatch", Value: bson.D{{Key: "from", Value: userOID}}},
		}},
	}

	guard := struct {
		ID    primitive.ObjectID `bson:"_id"`
		Rates []BookRate         `bson:"rates"`
	}{}

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(fields)).Decode(&guard)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if len(guard.Rates) > 0 {
		return nil, ErrAlreadyRated
	}

	// 2. append the rate to the book (parent-first)
	bookRate := BookRate{
		ID:        primitive.NewObjectID(),
		From:      userOID,
		Rate:      rate,
		Comment:   comment,
		CreatedTS: time.Now(),
	}

	filter := bson.D{{Key: "_id", Value: id}}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "rates", Value: bookRate}}}}

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if result.ModifiedCount != 1 {
		return nil, apperror.ErrUpdateFailed
	}

	// 3. record the book in the rater's ratedBooks list.
	// the rate above is already committed; a failure here is reported as
	// UpdateFailed while the book keeps the new rate
	filter = bson.D{{Key: "_id", Value: userOID}}
	update = bson.D{{Key: "$push", Value: bson.D{{Key: "ratedBooks", Value: id}}}}

	result, err = m.UserCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if result.ModifiedCount != 1 {
		return nil, apperror.ErrUpdateFailed
	}

	return &bookRate, nil
}

// ModifyBookRate patches rate/comment of an embedded rating.
// only the original author may patch; the admin surface passes asAdmin=true
func (m BookModel) ModifyBookRate(bookID string, rateID string, userOID primitive.ObjectID, rate int32, comment string, asAdmin bool) error {

	id, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return apperror.ErrIDNotValid
	}
	rid, err := primitive.ObjectIDFromHex(rateID)
	if err != nil {
		return apperror.ErrIDNotValid
	}

	elem := bson.D{{Key: "_id", Value: rid}}
	if !asAdmin {
		elem = append(elem, bson.E{Key: "from", Value: userOID})
	}

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "rates", Value: bson.D{{Key: "$elemMatch", Value: elem}}},
	}

	// positional update of the matched sub-document
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "rates.$.rate", Value: rate},
			{Key: "rates.$.comment", Value: comment},
			{Key: "rates.$.modifiedTS", Value: time.Now()},
		}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.MatchedCount == 0 {
		return ErrBookRateNotOwned
	}

	return nil
}

// DeleteBookRate pulls the rating from the book, then the book id from the
// author's ratedBooks. same failure model as RateBook: the first write is
// never rolled back when the second one misses
func (m BookModel) DeleteBookRate(bookID string, rateID string, userOID primitive.ObjectID, asAdmin bool) error {

	id, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return apperror.ErrIDNotValid
	}
	rid, err := primitive.ObjectIDFromHex(rateID)
	if err != nil {
		return apperror.ErrIDNotValid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// the admin surface removes other users' rates, so the author must be read
	// from the sub-document before it disappears
	author := userOID
	if asAdmin {
		fields := bson.D{
			{Key: "rates", Value: bson.D{
				{Key: "$elemMatch", Value: bson.D{{Key: "_id", Value: rid}}},
			}},
		}

		data := struct {
			Rates []BookRate `bson:"rates"`
		}{}

		err = m.Collection.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(fields)).Decode(&data)
		if err != nil || len(data.Rates) == 0 {
			return ErrBookRateNotOwned
		}
		author = data.Rates[0].From
	}

	filter := bson.D{{Key: "_id", Value: id}}
	update := bson.D{
		{Key: "$pull", Value: bson.D{
			{Key: "rates", Value: bson.D{
				{Key: "_id", Value: rid},
				{Key: "from", Value: author},
			}},
		}},
	}

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.ModifiedCount == 0 {
		return ErrBookRateNotOwned
	}

	// second write: remove the back-reference
	filter = bson.D{{Key: "_id", Value: author}}
	update = bson.D{{Key: "$pull", Value: bson.D{{Key: "ratedBooks", Value: id}}}}

	result, err = m.UserCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.ModifiedCount != 1 {
		return apperror.ErrUpdateFailed
	}

	return nil
}

// DeleteBook removes a book and its reference on the uploader.
// embedded rates disappear with the document; ratedBooks entries of other
// users are left dangling (matching the original system)
func (m BookModel) DeleteBook(bookID string, userOID primitive.ObjectID, asAdmin bool) error {

	id, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return apperror.ErrIDNotValid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	book, err := m.GetBook(bookID)
	if err != nil {
		return err
	}

	if !asAdmin && book.Uploader != userOID {
		return apperror.ErrDenied
	}

	result, err := m.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.DeletedCount != 1 {
		return ErrBookNotFound
	}

	filter := bson.D{{Key: "_id", Value: book.Uploader}}
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "books", Value: id}}}}

	upd, err := m.UserCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if upd.ModifiedCount != 1 {
		return apperror.ErrUpdateFailed
	}

	return nil
}
