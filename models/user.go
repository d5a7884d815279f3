package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookswap-api/apperror"
	"bookswap-api/database"
	"bookswap-api/helpers"
	"bookswap-api/lookups"
)

// UserRateRefs holds both directions of the user-rating back-references.
// every id must correspond to a userRates document that references this user back
type UserRateRefs struct {
	From []primitive.ObjectID `json:"from" bson:"from"` // ratings this user gave
	To   []primitive.ObjectID `json:"to" bson:"to"`     // ratings this user received
}

// User is the "interface" used for client communication
type User struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	EMail      string             `json:"email" bson:"email"`
	Username   string             `json:"username" bson:"username"`
	Fullname   string             `json:"fullname,omitempty" bson:"fullname,omitempty"`
	Password   string             `json:"password,omitempty" bson:"password"` // hash value
	Picture    string             `json:"picture,omitempty" bson:"picture,omitempty"`
	RoleCode   int32              `json:"roleCode" bson:"roleCD"`
	RoleText   string             `json:"roleText" bson:"-"`
	LastSeenTS time.Time          `json:"lastSeenTS" bson:"lastSeenTS,omitempty"`

	// denormalized back-references, maintained by the coordinator routines
	Books         []primitive.ObjectID `json:"books" bson:"books"`
	RatedBooks    []primitive.ObjectID `json:"ratedBooks" bson:"ratedBooks"`
	Borrows       []primitive.ObjectID `json:"borrows" bson:"borrows"`
	Messages      []primitive.ObjectID `json:"messages" bson:"messages"`
	UserRates     UserRateRefs         `json:"userRates" bson:"userRates"`
	Notifications []Notification       `json:"notifications" bson:"notifications"`
}

// UserListItem is the reduced model used for the admin listing
type UserListItem struct {
	ID         primitive.ObjectID `json:"id"`
	CreatedTS  time.Time          `json:"createdTS"`
	EMail      string             `json:"email"`
	Username   string             `json:"username"`
	RoleCode   int32              `json:"roleCode"`
	RoleText   string             `json:"roleText"`
	LastSeenTS time.Time          `json:"lastSeenTS"`
}

// UserModel provides the logic to the interface and access to the database
type UserModel struct {
	Client     *mongo.Client
	Collection *mongo.Collection
}

// UserExists checks if a User Name is available - used in client for in-type error checking
func (m UserModel) UserExists(username string) bool {
	b, _ := fieldExists(m.Collection, "username", username)
	return b
}

// EMailAddressExists checks if an eMail-Address is already assigned to any account
func (m UserModel) EMailAddressExists(emailAddress string) bool {
	b, _ := fieldExists(m.Collection, "email", emailAddress)
	return b
}

// CreateUser adds a new User
func (m UserModel) CreateUser(user User) (string, error) {

	b, err := fieldExists(m.Collection, "username", user.Username)
	if b || err != nil {
		return "", ErrUserNameNotAvailable
	}

	b, err = fieldExists(m.Collection, "email", user.EMail)
	if b || err != nil {
		return "", ErrEMailAddressTaken
	}

	pwdHash, err := helpers.GenerateHash(user.Password)
	if err != nil {
		return "", err
	}

	user.ID = primitive.NewObjectID()
	user.Password = pwdHash
	user.RoleCode = lookups.URuser
	user.LastSeenTS = time.Now()

	// reference lists start empty, never nil, so $push targets exist
	user.Books = []primitive.ObjectID{}
	user.RatedBooks = []primitive.ObjectID{}
	user.Borrows = []primitive.ObjectID{}
	user.Messages = []primitive.ObjectID{}
	user.UserRates = UserRateRefs{From: []primitive.ObjectID{}, To: []primitive.ObjectID{}}
	user.Notifications = []Notification{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := m.Collection.InsertOne(ctx, user)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// GetUserByName reads a user's login account data
func (m UserModel) GetUserByName(username string) (*User, error) {

	var user User

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		// pass any other real error
		return nil, err
	}

	addLookups(&user)

	return &user, nil
}

// GetUserByID reads a user's account data
func (m UserModel) GetUserByID(ID string) (*User, error) {

	var user User

	id, err := primitive.ObjectIDFromHex(ID)
	if err != nil {
		return nil, ErrInvalidUser
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		return nil, err
	}

	addLookups(&user)

	return &user, nil
}

// GetUserName returns the user name from an ID (reduced version, without profile data)
func (m UserModel) GetUserName(ID string) (string, error) {

	data := struct {
		Username string `bson:"username"`
	}{}

	id, err := primitive.ObjectIDFromHex(ID)
	if err != nil {
		return "", ErrInvalidUser
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "username", Value: 1}}

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", ErrInvalidUser
		}
		return "", err
	}

	return data.Username, nil
}

// ListUsers returns a page of accounts (admin listing)
func (m UserModel) ListUsers(paginator *helpers.Paginator) ([]UserListItem, error) {

	filter := paginator.KeywordFilter("username", "email", "fullname")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, paginator.FindOptions())
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var users []User

	err = cursor.All(ctx, &users)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if users == nil {
		return nil, apperror.ErrNoData
	}

	// copy data to reduced list-struct
	var userList []UserListItem
	var item UserListItem

	for _, u := range users {
		item.ID = u.ID
		item.CreatedTS = primitive.ObjectID.Timestamp(u.ID)
		item.EMail = u.EMail
		item.Username = u.Username
		item.RoleCode = u.RoleCode
		item.RoleText = database.GetLookupText(lookups.LookupType(lookups.LTuserRole), u.RoleCode)
		item.LastSeenTS = u.LastSeenTS

		userList = append(userList, item)
	}

	return userList, nil
}

// CheckPassword tests if a login's password matches
func (m UserModel) CheckPassword(givenPassword string, userInfo User) bool {
	match, err := helpers.CompareHash(userInfo.Password, givenPassword)
	if err != nil {
		return false
	}
	return match
}

// SetLastSeen saves timestamp of last log-in
func (m UserModel) SetLastSeen(userID primitive.ObjectID) {
	// no error is returned since this function is not essential

	filter := bson.D{{Key: "_id", Value: userID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "lastSeenTS", Value: time.Now()}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// just fire & forget
	_, _ = m.Collection.UpdateOne(ctx, filter, update)
}

// SetPassword is used to change a User's password
func (m UserModel) SetPassword(userID primitive.ObjectID, newPassword string) error {

	pwdHash, err := helpers.GenerateHash(newPassword)
	if err != nil {
		return err
	}

	filter := bson.D{{Key: "_id", Value: userID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "password", Value: pwdHash}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	// just an additional check to discover data consistency problems
	if result.MatchedCount != 1 || result.ModifiedCount != 1 {
		return apperror.ErrMultipleRecords
	}

	return nil
}

// UpdateProfile patches the editable profile fields of an account
func (m UserModel) UpdateProfile(userID primitive.ObjectID, patch map[string]interface{}) (*User, error) {

	// only a fixed set of fields can be patched (role and the reference
	// lists are owned by their coordinator routines)
	allowed := map[string]bool{
		"fullname": true,
		"picture":  true,
		"email":    true,
	}

	fields := bson.D{}
	for k, v := range patch {
		if allowed[k] {
			fields = append(fields, bson.E{Key: k, Value: v})
		}
	}

	if len(fields) == 0 {
		return nil, apperror.ErrNoData
	}

	filter := bson.D{{Key: "_id", Value: userID}}
	update := bson.D{{Key: "$set", Value: fields}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if result.MatchedCount != 1 {
		return nil, ErrInvalidUser
	}

	return m.GetUserByID(userID.Hex())
}

// DeleteUser removes an account.
// dependent books/borrows/userRates keep their references to the deleted id
// (soft orphaning, matching the behavior of the original system)
func (m UserModel) DeleteUser(userID primitive.ObjectID) error {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.DeletedCount != 1 {
		return ErrInvalidUser
	}

	return nil
}

// internal implementation used by multiple methods of the model
// there seems to be no function like "exists" so a projection on just the ID is used
func fieldExists(collection *mongo.Collection, field string, value string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fields := bson.D{
		{Key: "_id", Value: 1}}

	data := struct {
		ID primitive.ObjectID `bson:"_id"`
	}{}

	err := collection.FindOne(ctx, bson.M{field: value}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		// treat errors as a "yes" - caller should not evaluate the result in case of an error
		return true, err
	}
	// no error means a document was found
	return true, nil
}

// internal helper
func addLookups(user *User) *User {
	user.RoleText = database.GetLookupText(lookups.LookupType(lookups.LTuserRole), user.RoleCode)

	return user
}
