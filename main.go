package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"bookswap-api/authentication"
	"bookswap-api/authorization"
	"bookswap-api/controllers"
	"bookswap-api/database"
	"bookswap-api/environment"
	"bookswap-api/middleware"
)

var (
	router = gin.Default()
)

// runs BEFORE main - the order of package inits is undefined though!
func init() {
	// Load Config
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

func handleRequests() {
	router.Use(middleware.CORSMiddleware())

	router.GET("/test", controllers.Test)

	router.GET("/lookups", controllers.ListLookups)

	// auth-related
	router.POST("/login", controllers.Login)
	router.POST("/logout", authentication.TokenAuthMiddleware(), controllers.Logout)
	router.POST("/refresh", controllers.Refresh) // no middleware, the at may be expired here
	router.POST("/register", controllers.Register)

	router.POST("/user/exists", controllers.UserExists)
	router.POST("/email/exists", controllers.EMailExists)

	// user-mgmt
	router.GET("/users", authentication.TokenAuthMiddleware(), authorization.RequireRole(authorization.OpUserListAll), controllers.ListUsers)
	router.GET("/users/:id", authentication.TokenAuthMiddleware(), controllers.GetUser)
	router.DELETE("/users/:id", authentication.TokenAuthMiddleware(), controllers.DeleteUser)
	router.PATCH("/user/profile", authentication.TokenAuthMiddleware(), controllers.UpdateProfile)
	router.POST("/user/changePass", authentication.TokenAuthMiddleware(), controllers.ChangePassword)
	router.POST("/user/verifyPass", authentication.TokenAuthMiddleware(), controllers.VerifyPassword)

	// books & their ratings
	// GET has no BODY (Go/Gin & Postman support it, Angular does not) - hence query parameters
	router.GET("/books", controllers.ListBooks)
	router.GET("/books/:id", controllers.GetBook)
	router.POST("/books", authentication.TokenAuthMiddleware(), controllers.AddBook)
	router.DELETE("/books/:id", authentication.TokenAuthMiddleware(), controllers.DeleteBook)

	router.GET("/books/:id/rates", controllers.GetBookRates)
	router.POST("/books/:id/rates", authentication.TokenAuthMiddleware(), controllers.RateBook)
	router.PATCH("/books/:id/rates/:rateId", authentication.TokenAuthMiddleware(), controllers.ModifyBookRate)
	router.DELETE("/books/:id/rates/:rateId", authentication.TokenAuthMiddleware(), controllers.DeleteBookRate)

	// borrows
	router.GET("/borrows", authentication.TokenAuthMiddleware(), authorization.RequireRole(authorization.OpBorrowListAll), controllers.ListBorrows)
	router.GET("/borrows/:id", authentication.TokenAuthMiddleware(), controllers.GetBorrow)
	router.GET("/borrows/:id/rates", authentication.TokenAuthMiddleware(), controllers.ListBorrowRates)
	router.POST("/borrows", authentication.TokenAuthMiddleware(), controllers.AddBorrow)
	router.PATCH("/borrows/:id", authentication.TokenAuthMiddleware(), controllers.ModifyBorrow)
	router.DELETE("/borrows/:id", authentication.TokenAuthMiddleware(), authorization.RequireRole(authorization.OpBorrowDelete), controllers.DeleteBorrow)
	router.GET("/user/borrows", authentication.TokenAuthMiddleware(), controllers.ListMyBorrows)

	// user ratings (earned through verified borrows)
	router.GET("/userrates", authentication.TokenAuthMiddleware(), authorization.RequireRole(authorization.OpUserRateAdmin), controllers.ListAllUserRates)
	router.GET("/users/:id/rates", authentication.TokenAuthMiddleware(), controllers.ListUserRates)
	router.GET("/users/:id/rates/:rateId", authentication.TokenAuthMiddleware(), controllers.GetUserRate)
	router.POST("/users/:id/rates", authentication.TokenAuthMiddleware(), controllers.RateUser)
	router.PATCH("/users/:id/rates/:rateId", authentication.TokenAuthMiddleware(), controllers.ModifyUserRate)
	router.DELETE("/users/:id/rates/:rateId", authentication.TokenAuthMiddleware(), controllers.DeleteUserRate)

	// notifications
	router.GET("/notifications", authentication.TokenAuthMiddleware(), controllers.ListNotifications)
	router.POST("/notifications", authentication.TokenAuthMiddleware(), authorization.RequireRole(authorization.OpNotificationSend), controllers.SendNotification)
	router.PATCH("/notifications/:id/seen", authentication.TokenAuthMiddleware(), controllers.MarkNotificationSeen)
	router.DELETE("/notifications/:id", authentication.TokenAuthMiddleware(), controllers.DeleteNotification)

	// messages
	router.GET("/conversations", authentication.TokenAuthMiddleware(), controllers.ListConversations)
	router.POST("/conversations", authentication.TokenAuthMiddleware(), controllers.StartConversation)
	router.POST("/conversations/:id/messages", authentication.TokenAuthMiddleware(), controllers.SendMessage)
	router.PATCH("/conversations/:id/seen", authentication.TokenAuthMiddleware(), controllers.MarkConversationSeen)

	// analytics & monitoring
	router.GET("/stats/visits", authentication.TokenAuthMiddleware(), authorization.RequireRole(authorization.OpVisitorStats), controllers.GetVisits)
	router.DELETE("/stats/visits", authentication.TokenAuthMiddleware(), authorization.RequireRole(authorization.OpVisitorStats), controllers.PurgeVisits)
	router.GET("/stats/visitors", authentication.TokenAuthMiddleware(), authorization.RequireRole(authorization.OpVisitorStats), controllers.ListVisitors)
	router.GET("/monitor/requests/count", authentication.TokenAuthMiddleware(), authorization.RequireRole(authorization.OpMonitorRequests), controllers.CountRequests)
	router.GET("/monitor/requests/dump", authentication.TokenAuthMiddleware(), authorization.RequireRole(authorization.OpMonitorRequests), controllers.DumpRequests)
	router.POST("/monitor/requests/flush", authentication.TokenAuthMiddleware(), authorization.RequireRole(authorization.OpMonitorRequests), controllers.FlushRequests)

	switch os.Getenv("APP_ENV") {
	case "DEV":
		router.Run(":" + os.Getenv("API_PORT"))
	case "PRD":
		router.RunTLS(":"+os.Getenv("API_PORT"), os.Getenv("APP_CERTFILE"), os.Getenv("APP_KEYFILE"))
	default:
		panic(fmt.Errorf("APP_ENV not set"))
	}
}

func main() {
	// Connect to main database here (mongoDB)
	err := database.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseConnection()

	// connect to JWT Store (redis)
	err = authentication.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer authentication.CloseConnection()

	// connect to Analysis-DB (redis)
	err = database.OpenRedisConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseRedisConnection()

	// connect to the analytics store (influxDB)
	err = database.OpenInfluxConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseInfluxConnection()

	// Initialize the Models
	environment.InitializeModels()

	// expire stale entries in the request registry
	go func() {
		for range time.Tick(15 * time.Minute) {
			environment.Env.Requests.Flush()
		}
	}()

	fmt.Println("BookSwap-API running...")
	handleRequests()
}
