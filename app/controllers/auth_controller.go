package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"inkpost/app/forms"
	"inkpost/app/metrics"
	"inkpost/app/middleware"
	"inkpost/app/models"
	"inkpost/app/services"
	"inkpost/app/views"
)

// User visible authentication messages.
const (
	MsgEmailRegistered = "You've already signed up with that email, log in instead!"
	MsgUnknownEmail    = "That email does not exist, please try again."
	MsgWrongPassword   = "Password incorrect, please try again."
)

// AuthController handles registration, login and logout.
type AuthController struct {
	*Controller
	users    *services.UserService
	sessions *services.SessionService
}

// NewAuthController creates a new AuthController
func NewAuthController(base *Controller, users *services.UserService, sessions *services.SessionService) *AuthController {
	return &AuthController{Controller: base, users: users, sessions: sessions}
}

// RegisterForm displays the registration form
func (ac *AuthController) RegisterForm(w http.ResponseWriter, r *http.Request) {
	data := ac.pageData(w, r, "Register")
	data.RegisterForm = &forms.RegisterForm{}
	ac.render(w, r, http.StatusOK, views.PageRegister, data)
}

// Register creates the account and logs it in.
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	form, err := forms.ParseRegister(r)
	if err != nil {
		ac.clientError(w, r, http.StatusBadRequest)
		return
	}
	if !form.Valid() {
		data := ac.pageData(w, r, "Register")
		data.RegisterForm = form
		ac.render(w, r, http.StatusBadRequest, views.PageRegister, data)
		return
	}

	user, err := ac.users.Register(r.Context(), form.Email, form.Password, form.Name)
	metrics.RecordAuthEvent(metrics.EventRegister, err)
	switch {
	case errors.Is(err, services.ErrEmailAlreadyExists):
		ac.redirectWithFlash(w, r, "/login", MsgEmailRegistered)
		return
	case errors.Is(err, services.ErrValidation):
		data := ac.pageData(w, r, "Register")
		data.RegisterForm = form
		data.Message = "Please check the form and try again."
		ac.render(w, r, http.StatusBadRequest, views.PageRegister, data)
		return
	case err != nil:
		ac.serverError(w, r, err)
		return
	}

	if err := ac.login(w, r, user); err != nil {
		ac.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// LoginForm displays the login form
func (ac *AuthController) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := ac.pageData(w, r, "Log In")
	data.LoginForm = &forms.LoginForm{}
	ac.render(w, r, http.StatusOK, views.PageLogin, data)
}

// Login checks the credentials and starts a session. Failures re-render the
// form with a message and never set a cookie.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	form, err := forms.ParseLogin(r)
	if err != nil {
		ac.clientError(w, r, http.StatusBadRequest)
		return
	}
	if !form.Valid() {
		data := ac.pageData(w, r, "Log In")
		data.LoginForm = form
		ac.render(w, r, http.StatusBadRequest, views.PageLogin, data)
		return
	}

	user, err := ac.users.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		metrics.RecordAuthEvent(metrics.EventLogin, err)
		var msg string
		switch {
		case errors.Is(err, services.ErrUnknownEmail):
			msg = MsgUnknownEmail
		case errors.Is(err, services.ErrWrongPassword):
			msg = MsgWrongPassword
		default:
			ac.serverError(w, r, err)
			return
		}
		data := ac.pageData(w, r, "Log In")
		data.LoginForm = &forms.LoginForm{Email: form.Email}
		data.Message = msg
		ac.render(w, r, http.StatusOK, views.PageLogin, data)
		return
	}

	err = ac.login(w, r, user)
	metrics.RecordAuthEvent(metrics.EventLogin, err)
	if err != nil {
		ac.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// login starts a session for user and hands its token to the client.
func (ac *AuthController) login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	token, expires, err := ac.sessions.Login(r.Context(), user)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(w, token, expires, ac.cookieSecure)
	ac.logger.Info("user logged in", slog.Int("user_id", user.ID))
	return nil
}

// Logout ends the session and clears the cookie.
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	err := ac.sessions.Logout(r.Context(), middleware.SessionToken(r))
	metrics.RecordAuthEvent(metrics.EventLogout, err)
	if err != nil {
		ac.serverError(w, r, err)
		return
	}
	middleware.ClearSessionCookie(w, ac.cookieSecure)
	http.Redirect(w, r, "/", http.StatusFound)
}
