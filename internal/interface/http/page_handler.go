package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-registry/internal/application"
	"github.com/oksasatya/go-user-registry/pkg/validation"
	"github.com/oksasatya/go-user-registry/pkg/views"
)

// PageHandler renders the HTML pages. Templates must be installed on the
// engine with SetHTMLTemplate(views.Load()).
type PageHandler struct {
	Svc     Registry
	Logger  *logrus.Logger
	AppName string
}

func NewPageHandler(svc Registry, logger *logrus.Logger, appName string) *PageHandler {
	return &PageHandler{Svc: svc, Logger: logger, AppName: appName}
}

// pageFailure turns a registry error into a message safe to show on a page.
func pageFailure(err error) string {
	switch userapp.KindOf(err) {
	case userapp.KindDuplicateUser:
		return "this user already exists"
	case userapp.KindInvalidPassword:
		var e *userapp.Error
		if errors.As(err, &e) {
			return string(e.Rule)
		}
		return "invalid password"
	default:
		return "the user could not be created"
	}
}

// bindFailure names the offending form field, e.g. "username must be between 1 and 64 characters long".
func bindFailure(err error) string {
	details := validation.ToDetails(err)
	if msg, ok := details["username"]; ok {
		return "username " + msg
	}
	return "invalid form"
}

func (h *PageHandler) renderUsers(c *gin.Context, status int, opts ...views.Option) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		status = http.StatusInternalServerError
		opts = append(opts, views.WithError("users could not be loaded"))
	}
	opts = append(opts, views.WithUsers(users), views.WithRequestID(c.GetString("request_id")))
	c.HTML(status, views.UsersPage, views.NewPageData(h.AppName, "users", opts...))
}

// Users GET /
func (h *PageHandler) Users(c *gin.Context) {
	h.renderUsers(c, http.StatusOK)
}

// Register POST / (form)
func (h *PageHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderUsers(c, http.StatusBadRequest, views.WithUsername(req.Username), views.WithError(bindFailure(err)))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.Username, req.Password1, req.Password2)
	countRegister(err)
	if err != nil {
		status, _, _ := registryFailure(err)
		h.renderUsers(c, status, views.WithUsername(req.Username), views.WithError(pageFailure(err)))
		return
	}
	h.renderUsers(c, http.StatusCreated, views.WithMessage("user "+u.Username+" created"))
}

// LoginForm GET /login
func (h *PageHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, views.LoginPage, views.NewPageData(h.AppName, "login",
		views.WithRequestID(c.GetString("request_id"))))
}

// Login POST /login (form)
func (h *PageHandler) Login(c *gin.Context) {
	var req loginRequest
	opts := []views.Option{views.WithRequestID(c.GetString("request_id"))}
	if err := c.ShouldBind(&req); err != nil {
		opts = append(opts, views.WithError(msgLoginFailed))
		c.HTML(http.StatusBadRequest, views.LoginPage, views.NewPageData(h.AppName, "login", opts...))
		return
	}
	opts = append(opts, views.WithUsername(req.Username))

	ok, err := h.Svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	countLogin(ok)
	switch {
	case err != nil && userapp.KindOf(err) != userapp.KindUserNotFound:
		opts = append(opts, views.WithError(msgLoginFailed))
		c.HTML(http.StatusInternalServerError, views.LoginPage, views.NewPageData(h.AppName, "login", opts...))
	case ok:
		opts = append(opts, views.WithMessage(msgLoginOK))
		c.HTML(http.StatusOK, views.LoginPage, views.NewPageData(h.AppName, "login", opts...))
	default:
		opts = append(opts, views.WithError(msgLoginFailed))
		c.HTML(http.StatusOK, views.LoginPage, views.NewPageData(h.AppName, "login", opts...))
	}
}
