package models

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookswap-api/apperror"
	"bookswap-api/lookups"
)

// cross-collection write tests, run against a live mongo.
// set TEST_DB_URI (eg. mongodb://localhost:27017) to enable them

var (
	testOnce   sync.Once
	testClient *mongo.Client
)

type testModels struct {
	users         UserModel
	books         BookModel
	borrows       BorrowModel
	userRates     UserRateModel
	notifications NotificationModel
	messages      MessageModel
	db            *mongo.Database
}

func setupModels(t *testing.T) *testModels {
	t.Helper()

	uri := os.Getenv("TEST_DB_URI")
	if uri == "" {
		t.Skip("TEST_DB_URI not set")
	}

	testOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			testClient = client
		}
	})
	require.NotNil(t, testClient, "cannot connect to %s", uri)

	db := testClient.Database("bookswap_test")

	tm := &testModels{db: db}

	users := db.Collection("users")
	books := db.Collection("books")
	borrows := db.Collection("borrows")
	userRates := db.Collection("userRates")
	messages := db.Collection("messages")

	tm.users = UserModel{Client: testClient, Collection: users}
	tm.books = BookModel{Client: testClient, Collection: books, UserCollection: users, GetUserName: func(string) (string, error) { return "", nil }}
	tm.borrows = BorrowModel{Client: testClient, Collection: borrows, UserCollection: users}
	tm.notifications = NotificationModel{Client: testClient, UserCollection: users, BorrowCollection: borrows, UserRateCollection: userRates}
	tm.userRates = UserRateModel{
		Client:             testClient,
		Collection:         userRates,
		BorrowCollection:   borrows,
		UserCollection:     users,
		CreateNotification: tm.notifications.CreateNotification,
	}
	tm.messages = MessageModel{Client: testClient, Collection: messages, UserCollection: users}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
	})

	return tm
}

func (tm *testModels) createUser(t *testing.T, name string) primitive.ObjectID {
	t.Helper()

	id, err := tm.users.CreateUser(User{
		Username: name + "-" + primitive.NewObjectID().Hex(),
		EMail:    name + "-" + primitive.NewObjectID().Hex() + "@example.com",
		Password: "long enough secret",
	})
	require.NoError(t, err)

	oid, err := primitive.ObjectIDFromHex(id)
	require.NoError(t, err)
	return oid
}

func (tm *testModels) createBook(t *testing.T, uploader primitive.ObjectID) string {
	t.Helper()

	id, err := tm.books.CreateBook(&Book{Uploader: uploader, Title: "The Hobbit", Author: "Tolkien", ForBorrow: true})
	require.NoError(t, err)
	return id
}

func (tm *testModels) createBorrow(t *testing.T, from primitive.ObjectID, to primitive.ObjectID, book string) string {
	t.Helper()

	id, err := tm.borrows.CreateBorrow(&Borrow{
		From:  from,
		To:    to,
		Books: []primitive.ObjectID{mustOID(t, book)},
	})
	require.NoError(t, err)
	return id
}

func (tm *testModels) verifyBorrow(t *testing.T, id string) {
	t.Helper()

	verified := true
	_, err := tm.borrows.ModifyBorrow(id, &verified, nil)
	require.NoError(t, err)
}

func (tm *testModels) loadUser(t *testing.T, id primitive.ObjectID) *User {
	t.Helper()

	user, err := tm.users.GetUserByID(id.Hex())
	require.NoError(t, err)
	return user
}

func mustOID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()

	oid, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return oid
}

func TestCreateBook_BackReference(t *testing.T) {
	tm := setupModels(t)

	uploader := tm.createUser(t, "uploader")
	bookID := tm.createBook(t, uploader)

	user := tm.loadUser(t, uploader)
	assert.Equal(t, []primitive.ObjectID{mustOID(t, bookID)}, user.Books)
}

func TestRateBook_Twice(t *testing.T) {
	tm := setupModels(t)

	uploader := tm.createUser(t, "uploader")
	rater := tm.createUser(t, "rater")
	bookID := tm.createBook(t, uploader)

	_, err := tm.books.RateBook(bookID, rater, 5, "great")
	require.NoError(t, err)

	// the second attempt must be rejected and leave a single entry behind
	_, err = tm.books.RateBook(bookID, rater, 1, "changed my mind")
	assert.Equal(t, ErrAlreadyRated, err)

	book, err := tm.books.GetBook(bookID)
	require.NoError(t, err)
	require.Len(t, book.Rates, 1)
	assert.Equal(t, int32(5), book.Rates[0].Rate)

	user := tm.loadUser(t, rater)
	assert.Equal(t, []primitive.ObjectID{book.ID}, user.RatedBooks)
}

func TestRateBook_UnknownBook(t *testing.T) {
	tm := setupModels(t)

	rater := tm.createUser(t, "rater")

	_, err := tm.books.RateBook(primitive.NewObjectID().Hex(), rater, 3, "")
	assert.Equal(t, ErrBookNotFound, err)
}

func TestCreateBorrow_BothUsersReferenced(t *testing.T) {
	tm := setupModels(t)

	lender := tm.createUser(t, "lender")
	borrower := tm.createUser(t, "borrower")
	bookID := tm.createBook(t, lender)

	borrowID := tm.createBorrow(t, lender, borrower, bookID)
	borrowOID := mustOID(t, borrowID)

	assert.Equal(t, []primitive.ObjectID{borrowOID}, tm.loadUser(t, lender).Borrows)
	assert.Equal(t, []primitive.ObjectID{borrowOID}, tm.loadUser(t, borrower).Borrows)

	borrow, err := tm.borrows.GetBorrow(borrowID)
	require.NoError(t, err)
	assert.False(t, borrow.Verified)
}

func TestDeleteBorrow_BothUsersReleased(t *testing.T) {
	tm := setupModels(t)

	lender := tm.createUser(t, "lender")
	borrower := tm.createUser(t, "borrower")
	bookID := tm.createBook(t, lender)
	borrowID := tm.createBorrow(t, lender, borrower, bookID)

	require.NoError(t, tm.borrows.DeleteBorrow(borrowID))

	assert.Empty(t, tm.loadUser(t, lender).Borrows)
	assert.Empty(t, tm.loadUser(t, borrower).Borrows)

	_, err := tm.borrows.GetBorrow(borrowID)
	assert.Equal(t, ErrBorrowNotFound, err)
}

func TestCreateUserRate_UnverifiedBorrow(t *testing.T) {
	tm := setupModels(t)

	lender := tm.createUser(t, "lender")
	borrower := tm.createUser(t, "borrower")
	bookID := tm.createBook(t, lender)
	borrowID := tm.createBorrow(t, lender, borrower, bookID)

	_, err := tm.userRates.CreateUserRate(borrower, lender, borrowID, true, "thx")
	assert.Equal(t, ErrBorrowNotVerified, err)

	// nothing committed
	rates, err := tm.userRates.ListByBorrow(borrowID)
	assert.Equal(t, apperror.ErrNoData, err)
	assert.Empty(t, rates)
}

func TestCreateUserRate_AllReferencesUpdated(t *testing.T) {
	tm := setupModels(t)

	lender := tm.createUser(t, "lender")
	borrower := tm.createUser(t, "borrower")
	bookID := tm.createBook(t, lender)
	borrowID := tm.createBorrow(t, lender, borrower, bookID)
	tm.verifyBorrow(t, borrowID)

	rate, err := tm.userRates.CreateUserRate(borrower, lender, borrowID, true, "thx")
	require.NoError(t, err)

	// the borrow, the giver and the receiver all point back at the rating
	borrow, err := tm.borrows.GetBorrow(borrowID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{rate.ID}, borrow.UserRates)

	assert.Equal(t, []primitive.ObjectID{rate.ID}, tm.loadUser(t, borrower).UserRates.From)
	assert.Equal(t, []primitive.ObjectID{rate.ID}, tm.loadUser(t, lender).UserRates.To)

	// the ratee is notified
	notifications, err := tm.notifications.ListNotifications(lender)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, rate.ID, notifications[0].DocID)
	assert.Equal(t, lookups.DTuserRate, notifications[0].DocType)
	assert.Equal(t, lookups.NTcreate, notifications[0].NotiType)
	assert.False(t, notifications[0].Seen)
}

func TestCreateUserRate_DuplicateAllowed(t *testing.T) {
	tm := setupModels(t)

	lender := tm.createUser(t, "lender")
	borrower := tm.createUser(t, "borrower")
	bookID := tm.createBook(t, lender)
	borrowID := tm.createBorrow(t, lender, borrower, bookID)
	tm.verifyBorrow(t, borrowID)

	_, err := tm.userRates.CreateUserRate(borrower, lender, borrowID, true, "first")
	require.NoError(t, err)

	// no uniqueness rule on (borrow, from, to)
	_, err = tm.userRates.CreateUserRate(borrower, lender, borrowID, false, "second")
	require.NoError(t, err)

	rates, err := tm.userRates.ListByBorrow(borrowID)
	require.NoError(t, err)
	assert.Len(t, rates, 2)
}

func TestCreateUserRate_UnverifyDoesNotInvalidate(t *testing.T) {
	tm := setupModels(t)

	lender := tm.createUser(t, "lender")
	borrower := tm.createUser(t, "borrower")
	bookID := tm.createBook(t, lender)
	borrowID := tm.createBorrow(t, lender, borrower, bookID)
	tm.verifyBorrow(t, borrowID)

	rate, err := tm.userRates.CreateUserRate(borrower, lender, borrowID, true, "")
	require.NoError(t, err)

	// flipping the flag back leaves the existing rating alone
	verified := false
	_, err = tm.borrows.ModifyBorrow(borrowID, &verified, nil)
	require.NoError(t, err)

	kept, err := tm.userRates.GetUserRate(rate.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, rate.ID, kept.ID)

	// but new ratings are rejected again
	_, err = tm.userRates.CreateUserRate(lender, borrower, borrowID, true, "")
	assert.Equal(t, ErrBorrowNotVerified, err)
}

func TestDeleteUserRate_Symmetry(t *testing.T) {
	tm := setupModels(t)

	lender := tm.createUser(t, "lender")
	borrower := tm.createUser(t, "borrower")
	bookID := tm.createBook(t, lender)
	borrowID := tm.createBorrow(t, lender, borrower, bookID)
	tm.verifyBorrow(t, borrowID)

	rate, err := tm.userRates.CreateUserRate(borrower, lender, borrowID, true, "")
	require.NoError(t, err)

	err = tm.userRates.DeleteUserRate(lender.Hex(), rate.ID.Hex(), borrower, false)
	require.NoError(t, err)

	// every back-reference is gone
	borrow, err := tm.borrows.GetBorrow(borrowID)
	require.NoError(t, err)
	assert.Empty(t, borrow.UserRates)
	assert.Empty(t, tm.loadUser(t, borrower).UserRates.From)
	assert.Empty(t, tm.loadUser(t, lender).UserRates.To)

	// deleting twice fails
	err = tm.userRates.DeleteUserRate(lender.Hex(), rate.ID.Hex(), borrower, false)
	assert.Equal(t, ErrUserRateNotFound, err)
}

func TestModifyUserRate_AuthorOnly(t *testing.T) {
	tm := setupModels(t)

	lender := tm.createUser(t, "lender")
	borrower := tm.createUser(t, "borrower")
	intruder := tm.createUser(t, "intruder")
	bookID := tm.createBook(t, lender)
	borrowID := tm.createBorrow(t, lender, borrower, bookID)
	tm.verifyBorrow(t, borrowID)

	rate, err := tm.userRates.CreateUserRate(borrower, lender, borrowID, true, "ok")
	require.NoError(t, err)

	flipped := false

	// someone else, without the admin flag
	err = tm.userRates.ModifyUserRate(lender.Hex(), rate.ID.Hex(), intruder, &flipped, nil, false)
	assert.Equal(t, ErrUserRateNotOwned, err)

	// the author
	err = tm.userRates.ModifyUserRate(lender.Hex(), rate.ID.Hex(), borrower, &flipped, nil, false)
	require.NoError(t, err)

	kept, err := tm.userRates.GetUserRate(rate.ID.Hex())
	require.NoError(t, err)
	assert.False(t, kept.Rate)

	// an admin may edit anyone's
	comment := "moderated"
	err = tm.userRates.ModifyUserRate(lender.Hex(), rate.ID.Hex(), intruder, nil, &comment, true)
	require.NoError(t, err)
}

func TestCreateNotification_Gates(t *testing.T) {
	tm := setupModels(t)

	from := tm.createUser(t, "from")
	to := tm.createUser(t, "to")

	// unknown referenced document
	err := tm.notifications.CreateNotification(to, from, primitive.NewObjectID(), lookups.DTborrow, lookups.NTcreate)
	assert.Equal(t, ErrReferencedDocMissing, err)

	// unknown doc type
	err = tm.notifications.CreateNotification(to, from, primitive.NewObjectID(), "book", lookups.NTcreate)
	assert.Equal(t, ErrInvalidDocType, err)

	// unknown noti type
	err = tm.notifications.CreateNotification(to, from, primitive.NewObjectID(), lookups.DTborrow, "seen")
	assert.Equal(t, ErrInvalidNotiType, err)

	// nothing was appended
	notifications, err := tm.notifications.ListNotifications(to)
	assert.Equal(t, apperror.ErrNoData, err)
	assert.Empty(t, notifications)
}

func TestMarkNotificationSeen_Idempotent(t *testing.T) {
	tm := setupModels(t)

	lender := tm.createUser(t, "lender")
	borrower := tm.createUser(t, "borrower")
	bookID := tm.createBook(t, lender)
	borrowID := tm.createBorrow(t, lender, borrower, bookID)

	err := tm.notifications.CreateNotification(lender, borrower, mustOID(t, borrowID), lookups.DTborrow, lookups.NTverify)
	require.NoError(t, err)

	notifications, err := tm.notifications.ListNotifications(lender)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	notiID := notifications[0].ID.Hex()

	require.NoError(t, tm.notifications.MarkSeen(lender, notiID))

	// marking again is a no-op, not an error
	require.NoError(t, tm.notifications.MarkSeen(lender, notiID))

	// an unknown id still is one
	err = tm.notifications.MarkSeen(lender, primitive.NewObjectID().Hex())
	assert.Equal(t, ErrNotificationNotFound, err)
}

func TestConversation_Flow(t *testing.T) {
	tm := setupModels(t)

	alice := tm.createUser(t, "alice")
	bob := tm.createUser(t, "bob")

	convID, err := tm.messages.CreateConversation(alice, bob, "hi bob")
	require.NoError(t, err)

	convOID := mustOID(t, convID)
	assert.Equal(t, []primitive.ObjectID{convOID}, tm.loadUser(t, alice).Messages)
	assert.Equal(t, []primitive.ObjectID{convOID}, tm.loadUser(t, bob).Messages)

	_, err = tm.messages.AppendMessage(convID, bob, "hi alice")
	require.NoError(t, err)

	// outsiders cannot post
	mallory := tm.createUser(t, "mallory")
	_, err = tm.messages.AppendMessage(convID, mallory, "let me in")
	assert.Equal(t, ErrConversationNotMember, err)

	conversations, err := tm.messages.ListConversations(alice)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Len(t, conversations[0].Contents, 2)
}

func TestDeleteUser_NoCascade(t *testing.T) {
	tm := setupModels(t)

	lender := tm.createUser(t, "lender")
	borrower := tm.createUser(t, "borrower")
	bookID := tm.createBook(t, lender)
	borrowID := tm.createBorrow(t, lender, borrower, bookID)

	require.NoError(t, tm.users.DeleteUser(borrower))

	// documents referencing the deleted account stay behind
	borrow, err := tm.borrows.GetBorrow(borrowID)
	require.NoError(t, err)
	assert.Equal(t, borrower, borrow.To)

	book, err := tm.books.GetBook(bookID)
	require.NoError(t, err)
	assert.Equal(t, lender, book.Uploader)
}

func TestBookRate_AdminDelete(t *testing.T) {
	tm := setupModels(t)

	uploader := tm.createUser(t, "uploader")
	rater := tm.createUser(t, "rater")
	bookID := tm.createBook(t, uploader)

	rate, err := tm.books.RateBook(bookID, rater, 4, "fine")
	require.NoError(t, err)

	// another member cannot remove it
	err = tm.books.DeleteBookRate(bookID, rate.ID.Hex(), uploader, false)
	assert.Equal(t, ErrBookRateNotOwned, err)

	// an admin can, and the rater's back-reference goes with it
	err = tm.books.DeleteBookRate(bookID, rate.ID.Hex(), uploader, true)
	require.NoError(t, err)

	book, err := tm.books.GetBook(bookID)
	require.NoError(t, err)
	assert.Empty(t, book.Rates)
	assert.Empty(t, tm.loadUser(t, rater).RatedBooks)
}

func countDocs(t *testing.T, col *mongo.Collection, filter bson.M) int64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	n, err := col.CountDocuments(ctx, filter)
	require.NoError(t, err)
	return n
}

func TestDeleteBook_RemovesUploaderReference(t *testing.T) {
	tm := setupModels(t)

	uploader := tm.createUser(t, "uploader")
	bookID := tm.createBook(t, uploader)

	err := tm.books.DeleteBook(bookID, uploader, false)
	require.NoError(t, err)

	assert.Empty(t, tm.loadUser(t, uploader).Books)
	assert.Equal(t, int64(0), countDocs(t, tm.books.Collection, bson.M{"_id": mustOID(t, bookID)}))

	// someone else's book needs the admin flag
	other := tm.createUser(t, "other")
	bookID = tm.createBook(t, uploader)

	err = tm.books.DeleteBook(bookID, other, false)
	assert.Equal(t, apperror.ErrDenied, err)

	err = tm.books.DeleteBook(bookID, other, true)
	require.NoError(t, err)
}

func TestRateBook_PartialCommit(t *testing.T) {
	tm := setupModels(t)

	uploader := tm.createUser(t, "uploader")
	rater := tm.createUser(t, "rater")
	bookID := tm.createBook(t, uploader)

	// the rater's account disappears before the back-reference write lands
	require.NoError(t, tm.users.DeleteUser(rater))

	_, err := tm.books.RateBook(bookID, rater, 4, "late")
	assert.Equal(t, apperror.ErrUpdateFailed, err)

	// the first write is already committed: the book keeps the rate
	rates, err := tm.books.GetBookRates(bookID)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, rater, rates[0].From)
}

func TestCreateBorrow_PartialCommit(t *testing.T) {
	tm := setupModels(t)

	lender := tm.createUser(t, "lender")
	bookID := tm.createBook(t, lender)

	// the counterpart does not exist, so only one of the two reference
	// writes can land
	_, err := tm.borrows.CreateBorrow(&Borrow{
		From:  primitive.NewObjectID(),
		To:    lender,
		Books: []primitive.ObjectID{mustOID(t, bookID)},
	})
	assert.Equal(t, apperror.ErrUpdateFailed, err)

	// the borrow document itself is committed and stays
	assert.Equal(t, int64(1), countDocs(t, tm.borrows.Collection, bson.M{}))
}
