package environment

import (
	"os"

	"go.mongodb.org/mongo-driver/mongo"

	"bookswap-api/analytics"
	"bookswap-api/authorization"
	"bookswap-api/client"
	"bookswap-api/database"
	"bookswap-api/models"
)

// Environment is used for dependency-injection (package de-coupling)
type Environment struct {
	Tracker           *analytics.Tracker
	Requests          *client.Registry
	UserModel         models.UserModel
	BookModel         models.BookModel
	BorrowModel       models.BorrowModel
	UserRateModel     models.UserRateModel
	NotificationModel models.NotificationModel
	MessageModel      models.MessageModel
}

// newEnv operates as the constructor to initialize the collection references (private)
func newEnv(mongoClient *mongo.Client) *Environment {
	env := &Environment{}

	db := mongoClient.Database(os.Getenv("DB_NAME"))

	users := db.Collection(database.CollectionUsers)
	books := db.Collection(database.CollectionBooks)
	borrows := db.Collection(database.CollectionBorrows)
	userRates := db.Collection(database.CollectionUserRates)
	messages := db.Collection(database.CollectionMessages)

	// prepare analytics gathering (book profile visits & searches)
	// always create the object so no further checking is needed in the models
	env.Requests = new(client.Registry)
	env.Requests.Initialize()

	env.Tracker = new(analytics.Tracker)
	env.Tracker.SetConnections(database.GetInfluxConnection(), database.GetRedisConnection())
	env.Tracker.VisitorAPI.WriteAPI = (*database.GetInfluxConnection()).WriteAPIBlocking(
		os.Getenv("ANALYTICS_ORG"), os.Getenv("ANALYTICS_VISITORS_BUCKET"))
	env.Tracker.VisitorAPI.QueryAPI = (*database.GetInfluxConnection()).QueryAPI(os.Getenv("ANALYTICS_ORG"))
	env.Tracker.VisitorAPI.DeleteAPI = (*database.GetInfluxConnection()).DeleteAPI()
	env.Tracker.SearchAPI.WriteAPI = (*database.GetInfluxConnection()).WriteAPIBlocking(
		os.Getenv("ANALYTICS_ORG"), os.Getenv("ANALYTICS_SEARCHES_BUCKET"))
	env.Tracker.SearchAPI.QueryAPI = (*database.GetInfluxConnection()).QueryAPI(os.Getenv("ANALYTICS_ORG"))

	env.UserModel.Client = mongoClient
	env.UserModel.Collection = users

	env.BookModel.Client = mongoClient
	env.BookModel.Collection = books
	env.BookModel.UserCollection = users
	// inject functions from the user model
	env.BookModel.GetUserName = env.UserModel.GetUserName

	env.BorrowModel.Client = mongoClient
	env.BorrowModel.Collection = borrows
	env.BorrowModel.UserCollection = users

	env.NotificationModel.Client = mongoClient
	env.NotificationModel.UserCollection = users
	env.NotificationModel.BorrowCollection = borrows
	env.NotificationModel.UserRateCollection = userRates

	env.UserRateModel.Client = mongoClient
	env.UserRateModel.Collection = userRates
	env.UserRateModel.BorrowCollection = borrows
	env.UserRateModel.UserCollection = users
	// the rating coordinator notifies the ratee via the notification model
	env.UserRateModel.CreateNotification = env.NotificationModel.CreateNotification

	env.MessageModel.Client = mongoClient
	env.MessageModel.Collection = messages
	env.MessageModel.UserCollection = users

	// inject user model function to analytics tracker after its initialization
	env.Tracker.GetUserName = env.UserModel.GetUserName

	// the access guard reads credentials through its own projection
	authorization.Guard.SetConnections(map[string]*mongo.Collection{
		"users": users,
	})

	return env
}

// Env is the singleton registry
var Env *Environment

// InitializeModels injects the database connections to the models
// (do not confuse with package init)
func InitializeModels() {
	Env = newEnv(database.GetConnection())
}
