package routes

import (
	"log/slog"
	"net/http"

	"inkpost/app/controllers"
	"inkpost/app/middleware"
	"inkpost/app/services"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Base     *controllers.Controller
	Posts    *controllers.PostController
	Comments *controllers.CommentController
	Auth     *controllers.AuthController
	Pages    *controllers.PagesController
	Actors   middleware.ActorResolver
	Logger   *slog.Logger
}

// Setup defines the application's routes and returns a router.
func Setup(h Handlers) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.Logger(h.Logger))
	router.Use(middleware.Recoverer(h.Logger))
	router.Use(middleware.Metrics)
	router.Use(middleware.CurrentActor(h.Actors, h.Base.HandleError))

	admin := middleware.RequireAdmin(services.IsAdmin, http.HandlerFunc(h.Base.Forbidden))
	adminOnly := func(fn http.HandlerFunc) http.Handler { return admin(fn) }

	// Operational endpoints
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.Pages.Health).Methods(http.MethodGet)

	// Posts
	router.HandleFunc("/", h.Posts.Index).Methods(http.MethodGet)
	router.HandleFunc("/post/{id:[0-9]+}", h.Posts.Show).Methods(http.MethodGet)
	router.HandleFunc("/post/{id:[0-9]+}", h.Comments.Create).Methods(http.MethodPost)
	router.Handle("/new-post", adminOnly(h.Posts.New)).Methods(http.MethodGet)
	router.Handle("/new-post", adminOnly(h.Posts.Create)).Methods(http.MethodPost)
	router.Handle("/edit-post/{id:[0-9]+}", adminOnly(h.Posts.Edit)).Methods(http.MethodGet)
	router.Handle("/edit-post/{id:[0-9]+}", adminOnly(h.Posts.Update)).Methods(http.MethodPost)
	router.Handle("/delete/{id:[0-9]+}", adminOnly(h.Posts.Delete)).Methods(http.MethodGet)

	// Accounts
	router.HandleFunc("/register", h.Auth.RegisterForm).Methods(http.MethodGet)
	router.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", h.Auth.LoginForm).Methods(http.MethodGet)
	router.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	router.HandleFunc("/logout", h.Auth.Logout).Methods(http.MethodGet)

	// Static pages
	router.HandleFunc("/about", h.Pages.About).Methods(http.MethodGet)
	router.HandleFunc("/contact", h.Pages.Contact).Methods(http.MethodGet)

	// Unmatched paths skip router middleware, so wrap the few that matter.
	router.NotFoundHandler = chimw.RequestID(middleware.Logger(h.Logger)(http.HandlerFunc(h.Base.NotFound)))

	return router
}
