package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/campusconnect/campus-events-api/api"
	"github.com/campusconnect/campus-events-api/api/scheduler"
	"github.com/campusconnect/campus-events-api/config"
	"github.com/campusconnect/campus-events-api/databases"
	"github.com/campusconnect/campus-events-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	feed := NewLiveFeed()

	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	e := Event{DB: databases.NewEventDatabase(a.dbHelper)}
	rsvp := RSVP{
		DB:  databases.NewRSVPDatabase(a.dbHelper),
		EDB: databases.NewEventDatabase(a.dbHelper),
		UDB: databases.NewUserDatabase(a.dbHelper),
	}
	att := Attendance{
		CDB:  databases.NewCheckInDatabase(a.dbHelper),
		RDB:  databases.NewRSVPDatabase(a.dbHelper),
		EDB:  databases.NewEventDatabase(a.dbHelper),
		UDB:  databases.NewUserDatabase(a.dbHelper),
		Feed: feed,
	}
	authn := Auth{UDB: databases.NewUserDatabase(a.dbHelper)}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/auth/login", http.HandlerFunc(authn.OrganizerLoginHandler)).Methods("POST")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")

	apiCreate.Handle("/event", api.Middleware(http.HandlerFunc(e.CreateEventHandler))).Methods("POST")
	apiCreate.Handle("/event/{event_id}", api.Middleware(http.HandlerFunc(e.EventByIDHandler))).Methods("GET")
	apiCreate.Handle("/event/{event_id}", api.Middleware(http.HandlerFunc(e.UpdateEventHandler))).Methods("PUT")
	apiCreate.Handle("/event/{event_id}", api.Middleware(http.HandlerFunc(e.DeleteEventHandler))).Methods("DELETE")
	apiCreate.Handle("/event/{event_id}/qr", api.Middleware(http.HandlerFunc(e.EventQRHandler))).Methods("GET")
	apiCreate.Handle("/event/{event_id}/rsvps", api.Middleware(http.HandlerFunc(rsvp.RSVPsByEventIDHandler))).Methods("GET")
	apiCreate.Handle("/events", api.Middleware(http.HandlerFunc(e.EventHandler))).Methods("GET")

	apiCreate.Handle("/rsvp", api.Middleware(http.HandlerFunc(rsvp.CreateRSVPHandler))).Methods("POST")

	apiCreate.Handle("/attendance/verify", api.Middleware(http.HandlerFunc(att.VerifyCheckInHandler))).Methods("POST")
	apiCreate.Handle("/attendance/status/{eventId}/{userId}", api.Middleware(http.HandlerFunc(att.AttendanceStatusHandler))).Methods("GET")
	apiCreate.Handle("/attendance/stats/{eventId}", api.OrganizerMiddleware(http.HandlerFunc(att.AttendanceStatsHandler))).Methods("GET")

	// websocket connections outlive the request timeout, so the live
	// feed mounts outside the timeout middleware
	r.Handle("/api/v1/attendance/live/{eventId}", api.OrganizerMiddleware(http.HandlerFunc(feed.SubscribeHandler))).Methods("GET")

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("campus-events-api has connected to the database")

	// The uniqueness invariants live in these indexes; without them
	// concurrent check-ins can double-record, so startup fails hard.
	ctx := context.Background()
	if err := databases.NewCheckInDatabase(a.dbHelper).EnsureIndexes(ctx); err != nil {
		zap.S().With(err).Error("failed to ensure check-in indexes")
		return err
	}
	if err := databases.NewRSVPDatabase(a.dbHelper).EnsureIndexes(ctx); err != nil {
		zap.S().With(err).Error("failed to ensure rsvp indexes")
		return err
	}
	if err := databases.NewSchedulerLockDatabase(a.dbHelper).EnsureIndexes(ctx); err != nil {
		zap.S().With(err).Error("failed to ensure scheduler lock indexes")
		return err
	}

	a.Scheduler = scheduler.NewScheduler(
		databases.NewCheckInDatabase(a.dbHelper),
		databases.NewRSVPDatabase(a.dbHelper),
		databases.NewEventDatabase(a.dbHelper),
		databases.NewSchedulerLockDatabase(a.dbHelper),
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
