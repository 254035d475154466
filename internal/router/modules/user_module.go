package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-user-registry/internal/interface/http"
)

// UserModule wires the registry JSON handlers under the given group (usually /api):
// GET /users, GET /users/search, GET /users/:username, POST /users, POST /login
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("", m.Handler.List)
		users.GET("/search", m.Handler.Search)
		users.GET("/:username", m.Handler.Get)
		users.POST("", m.Handler.Register)
	}
	rg.POST("/login", m.Handler.Login)
}
