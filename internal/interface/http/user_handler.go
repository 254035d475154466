package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-registry/internal/application"
	"github.com/oksasatya/go-user-registry/internal/domain/entity"
	"github.com/oksasatya/go-user-registry/pkg/response"
	"github.com/oksasatya/go-user-registry/pkg/validation"
)

// Registry is the subset of the user service the handlers depend on.
type Registry interface {
	Register(ctx context.Context, username, password1, password2 string) (*entity.PublicUser, error)
	Authenticate(ctx context.Context, username, password string) (bool, error)
	GetUser(ctx context.Context, username string) (*entity.PublicUser, error)
	ListUsers(ctx context.Context) ([]entity.PublicUser, error)
	SearchUsers(ctx context.Context, q string, size int) ([]entity.PublicUser, error)
}

type UserHandler struct {
	Svc    Registry
	Logger *logrus.Logger
}

func NewUserHandler(svc Registry, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Username  string `json:"username" form:"username" binding:"required,username"`
	Password1 string `json:"password1" form:"password1"`
	Password2 string `json:"password2" form:"password2"`
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required,username"`
	Password string `json:"password" form:"password"`
}

const (
	msgLoginOK     = "logged in successfully"
	msgLoginFailed = "login failed"
)

// registryFailure maps a registry error to an HTTP status, message and error detail.
func registryFailure(err error) (int, string, any) {
	switch userapp.KindOf(err) {
	case userapp.KindDuplicateUser:
		return http.StatusConflict, "user already exists", nil
	case userapp.KindInvalidPassword:
		var rule userapp.Rule
		var e *userapp.Error
		if errors.As(err, &e) {
			rule = e.Rule
		}
		return http.StatusUnprocessableEntity, "invalid password", gin.H{"rule": rule}
	case userapp.KindUserNotFound:
		return http.StatusNotFound, "user not found", nil
	case userapp.KindPersistence:
		return http.StatusInternalServerError, "user could not be stored", nil
	default:
		return http.StatusInternalServerError, "internal error", nil
	}
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		status, msg, detail := registryFailure(err)
		response.Error[any](c, status, msg, detail)
		return
	}
	response.Success(c, http.StatusOK, users, "users", gin.H{"count": len(users)})
}

// Get GET /api/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		status, msg, detail := registryFailure(err)
		response.Error[any](c, status, msg, detail)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

// Search GET /api/users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	users, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		status, msg, detail := registryFailure(err)
		response.Error[any](c, status, msg, detail)
		return
	}
	response.Success(c, http.StatusOK, users, "search results", gin.H{"count": len(users)})
}

// Register POST /api/users (JSON or form)
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.Username, req.Password1, req.Password2)
	countRegister(err)
	if err != nil {
		status, msg, detail := registryFailure(err)
		response.Error[any](c, status, msg, detail)
		return
	}
	response.Success(c, http.StatusCreated, u, "user created", nil)
}

// Login POST /api/login (JSON, form or query)
// Unknown users and wrong passwords produce the same response.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ok, err := h.Svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	countLogin(ok)
	if err != nil && userapp.KindOf(err) != userapp.KindUserNotFound {
		status, msg, detail := registryFailure(err)
		response.Error[any](c, status, msg, detail)
		return
	}
	msg := msgLoginFailed
	if ok {
		msg = msgLoginOK
	}
	response.Success(c, http.StatusOK, gin.H{"authenticated": ok}, msg, nil)
}
