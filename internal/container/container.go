package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registry/config"
	"github.com/oksasatya/go-user-registry/internal/application"
	"github.com/oksasatya/go-user-registry/internal/domain/repository"
)

// Container carries the components built at startup so the router can wire
// modules from them. Optional collaborators are nil interfaces when not
// configured.
type Container struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Store     repository.UserStore
	Hasher    application.PasswordHasher
	Events    application.EventPublisher
	Directory application.Directory

	svc *application.Service
}

// Service returns the user registry, building it on first use.
func (c *Container) Service() *application.Service {
	if c.svc == nil {
		c.svc = application.NewService(c.Store, c.Hasher, c.Events, c.Directory, c.Logger)
	}
	return c.svc
}
