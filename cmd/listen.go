package main

import (
	"errors"
	"net"
	"strconv"

	"github.com/sirupsen/logrus"
)

// listenFirst binds the first free port of ports, in order.
func listenFirst(ports []int, logger *logrus.Logger) (net.Listener, error) {
	if len(ports) == 0 {
		return nil, errors.New("no ports to try")
	}
	var errs []error
	for _, p := range ports {
		ln, err := net.Listen("tcp", ":"+strconv.Itoa(p))
		if err == nil {
			return ln, nil
		}
		logger.WithError(err).WithField("port", p).Warn("port unavailable, trying next")
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
