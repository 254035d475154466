package container

import (
	"github.com/oksasatya/go-user-registry/internal/infrastructure/search"
	"github.com/oksasatya/go-user-registry/pkg/helpers"
)

// ConnectOptional installs the event publisher and the search directory when
// they are configured and reachable. They stay nil interfaces otherwise. The
// returned func closes what was opened. Call before Service.
func (c *Container) ConnectOptional() func() {
	closeFn := func() {}
	cfg := c.Config

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			c.Logger.WithError(err).Warn("rabbitmq unavailable, users are indexed directly")
		} else {
			c.Events = pub
			closeFn = pub.Close
		}
	}
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			c.Logger.WithError(err).Warn("elasticsearch unavailable, search scans the store")
		} else {
			c.Directory = search.NewDirectory(es, cfg.ESUsersIndex)
		}
	}
	return closeFn
}
