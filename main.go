package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sethshivam11/project-store-backend/handlers"
	"github.com/sethshivam11/project-store-backend/logging"
	"github.com/sethshivam11/project-store-backend/middleware"
	"github.com/sethshivam11/project-store-backend/services"
	"github.com/sethshivam11/project-store-backend/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createUserIndexes(collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.M{"username": 1},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.M{"email": 1},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(context.TODO(), indexes)
	if err != nil {
		return fmt.Errorf("failed to create unique indexes on users: %v", err)
	}
	return nil
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Logger.Warnf("Event ID: CONFIG_INVALID_DURATION, Description: %s=%q is not a duration, using %s", key, value, fallback)
		return fallback
	}
	return parsed
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Project Store backend...")

	if err := godotenv.Load(); err != nil {
		logging.Logger.Warn("Event ID: ENV_LOAD_WARNING, Description: No .env file found, relying on process environment")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "project-store"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.TODO())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	userCollection := db.Collection("users")
	projectCollection := db.Collection("projects")
	taskCollection := db.Collection("tasks")

	if err := createUserIndexes(userCollection); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	mediaBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "MediaStoreCB",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	media := utils.NewCloudinaryClient(&http.Client{Timeout: 30 * time.Second}, mediaBreaker)

	jwtService := services.NewJWTService(
		os.Getenv("ACCESS_TOKEN_SECRET"),
		os.Getenv("REFRESH_TOKEN_SECRET"),
		envDuration("ACCESS_TOKEN_TTL", time.Hour),
		envDuration("REFRESH_TOKEN_TTL", 240*time.Hour),
	)

	userService := services.NewUserService(userCollection, jwtService, media)
	projectService := services.NewProjectService(projectCollection, media)
	taskService := services.NewTaskService(taskCollection, projectCollection)

	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)

	authGate := middleware.VerifyJWT(jwtService, userService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Javne rute
	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("/register", userHandler.Register).Methods(http.MethodPost)
	users.HandleFunc("/login", userHandler.Login).Methods(http.MethodPost)
	users.HandleFunc("/usernameAvailable/{username}", userHandler.IsUsernameAvailable).Methods(http.MethodGet)
	users.HandleFunc("/verify", userHandler.VerifyEmail).Methods(http.MethodGet)
	users.HandleFunc("/resendMail", userHandler.ResendEmail).Methods(http.MethodGet)
	users.HandleFunc("/forgotPassword", userHandler.ForgotPassword).Methods(http.MethodPost)
	users.HandleFunc("/renewAccessToken", userHandler.RenewAccessToken).Methods(http.MethodPost)

	// Zaštićene rute
	usersAuth := api.PathPrefix("/users").Subrouter()
	usersAuth.Use(authGate)
	usersAuth.HandleFunc("/get", userHandler.GetCurrentUser).Methods(http.MethodGet)
	usersAuth.HandleFunc("/logout", userHandler.Logout).Methods(http.MethodGet)
	usersAuth.HandleFunc("/updateAvatar", userHandler.UpdateAvatar).Methods(http.MethodPatch)
	usersAuth.HandleFunc("/removeAvatar", userHandler.RemoveAvatar).Methods(http.MethodGet)
	usersAuth.HandleFunc("/updateDetails", userHandler.UpdateDetails).Methods(http.MethodPut)
	usersAuth.HandleFunc("/updateEmail", userHandler.UpdateEmail).Methods(http.MethodPatch)
	usersAuth.HandleFunc("/updatePassword", userHandler.UpdatePassword).Methods(http.MethodPatch)

	projects := api.PathPrefix("/projects").Subrouter()
	projects.Use(authGate)
	projects.HandleFunc("/create", projectHandler.CreateProject).Methods(http.MethodPost)
	projects.HandleFunc("/get", projectHandler.GetUserProjects).Methods(http.MethodGet)
	projects.HandleFunc("/markActive/{projectId}", projectHandler.MarkActive).Methods(http.MethodPatch)
	projects.HandleFunc("/markInactive/{projectId}", projectHandler.MarkInactive).Methods(http.MethodPatch)
	projects.HandleFunc("/delete/{projectId}", projectHandler.DeleteProject).Methods(http.MethodDelete)
	projects.HandleFunc("/update/{projectId}", projectHandler.UpdateProject).Methods(http.MethodPut)
	projects.HandleFunc("/removeImage/{projectId}", projectHandler.RemoveImage).Methods(http.MethodPatch)

	tasks := api.PathPrefix("/tasks").Subrouter()
	tasks.Use(authGate)
	tasks.HandleFunc("/create/{projectId}", taskHandler.CreateTask).Methods(http.MethodPost)
	tasks.HandleFunc("/user/{userId}", taskHandler.GetUserTasks).Methods(http.MethodGet)
	tasks.HandleFunc("/project/{projectId}", taskHandler.GetProjectTasks).Methods(http.MethodGet)
	tasks.HandleFunc("/assign", taskHandler.AssignTask).Methods(http.MethodPatch)
	tasks.HandleFunc("/unassign", taskHandler.UnassignTask).Methods(http.MethodPatch)
	tasks.HandleFunc("/markComplete/{taskId}", taskHandler.MarkComplete).Methods(http.MethodPatch)
	tasks.HandleFunc("/markIncomplete/{taskId}", taskHandler.MarkIncomplete).Methods(http.MethodPatch)
	tasks.HandleFunc("/update/{taskId}", taskHandler.UpdateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/delete/{taskId}", taskHandler.DeleteTask).Methods(http.MethodDelete)

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondWithJSON(w, http.StatusOK, nil, "App is running")
	}).Methods(http.MethodGet)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      corsRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost:%s", serverPort)
	if err := srv.ListenAndServe(); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}

// CORS Middleware
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", os.Getenv("CORS_ORIGIN"))
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
