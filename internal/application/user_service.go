package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
	repo "github.com/oksasatya/go-user-registry/internal/domain/repository"
)

// EventPublisher delivers registry events to a queue.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Directory is a searchable index of public user data.
type Directory interface {
	Index(ctx context.Context, u entity.PublicUser) error
	Search(ctx context.Context, q string, size int) ([]entity.PublicUser, error)
}

const dummyPassword = "registry-timing-guard"

type Service struct {
	Store     repo.UserStore
	Hasher    PasswordHasher
	Events    EventPublisher // optional
	Directory Directory      // optional
	Logger    *logrus.Logger

	dummyOnce   sync.Once
	dummySecret string
}

func NewService(store repo.UserStore, hasher PasswordHasher, events EventPublisher, directory Directory, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		Store:     store,
		Hasher:    hasher,
		Events:    events,
		Directory: directory,
		Logger:    logger,
	}
}

// Register creates a user record after checking the username is free and the
// password pair is acceptable. Only the bcrypt secret is persisted.
func (s *Service) Register(ctx context.Context, username, password1, password2 string) (*entity.PublicUser, error) {
	log := s.Logger.WithField("username", username)

	_, err := s.Store.Get(ctx, username)
	switch {
	case err == nil:
		log.Info("registration rejected: user exists")
		return nil, DuplicateUser(username)
	case !errors.Is(err, repo.ErrNotFound):
		log.WithError(err).Error("user lookup failed")
		return nil, Persistence(username, err)
	}

	secret, err := s.Hasher.Hash(password1, password2)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			log.WithField("rule", verr.Rule).Info("registration rejected: invalid password")
			return nil, InvalidPassword(username, verr)
		}
		log.WithError(err).Error("password hashing failed")
		return nil, Persistence(username, err)
	}

	created, err := s.Store.Put(ctx, entity.NewUser(username, secret))
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			log.Info("registration rejected: user created concurrently")
			return nil, DuplicateUser(username)
		}
		log.WithError(err).Error("user write failed")
		return nil, Persistence(username, err)
	}

	out := created.Public()
	log.Info("user registered")
	if !s.publishRegistered(ctx, out, created.CreatedAt) {
		s.indexDirect(ctx, out)
	}
	return &out, nil
}

// publishRegistered reports whether the event reached the queue.
func (s *Service) publishRegistered(ctx context.Context, u entity.PublicUser, at time.Time) bool {
	if s.Events == nil {
		return false
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	ev := entity.UserRegistered{Type: entity.EventUserRegistered, Username: u.Username, RegisteredAt: at}
	if err := s.Events.PublishJSON(ctx, ev); err != nil {
		s.Logger.WithError(err).WithField("username", u.Username).Warn("publish registration event failed")
		return false
	}
	return true
}

// indexDirect adds the user to the directory when no event will do it.
func (s *Service) indexDirect(ctx context.Context, u entity.PublicUser) {
	if s.Directory == nil {
		return
	}
	if err := s.Directory.Index(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("username", u.Username).Warn("directory index failed")
	}
}

// Authenticate reports whether password matches the stored secret.
// A wrong password is (false, nil); an unknown user is ErrUserNotFound.
func (s *Service) Authenticate(ctx context.Context, username, password string) (bool, error) {
	log := s.Logger.WithField("username", username)

	u, err := s.Store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Burn a comparison so unknown users cost the same as known ones.
			s.Hasher.Verify(password, s.timingSecret())
			log.Debug("login check: unknown user")
			return false, UserNotFound(username)
		}
		log.WithError(err).Error("user lookup failed")
		return false, Persistence(username, err)
	}

	ok := s.Hasher.Verify(password, u.Secret)
	log.WithField("match", ok).Debug("login check")
	return ok, nil
}

func (s *Service) timingSecret() string {
	s.dummyOnce.Do(func() {
		secret, err := s.Hasher.Hash(dummyPassword, dummyPassword)
		if err != nil {
			s.Logger.WithError(err).Warn("timing guard secret unavailable")
			return
		}
		s.dummySecret = secret
	})
	return s.dummySecret
}

// GetUser returns the public view of a single user.
func (s *Service) GetUser(ctx context.Context, username string) (*entity.PublicUser, error) {
	u, err := s.Store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, UserNotFound(username)
		}
		s.Logger.WithError(err).WithField("username", username).Error("user lookup failed")
		return nil, Persistence(username, err)
	}
	out := u.Public()
	return &out, nil
}

// ListUsers returns every registered user ordered by username.
func (s *Service) ListUsers(ctx context.Context) ([]entity.PublicUser, error) {
	users, err := s.Store.Fetch(ctx)
	if err != nil {
		s.Logger.WithError(err).Error("user fetch failed")
		return nil, Persistence("", err)
	}
	out := make([]entity.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// SearchUsers queries the directory index, falling back to a scan of the store
// when no directory is configured, it fails, or it has no match.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]entity.PublicUser, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	q = strings.TrimSpace(q)

	if s.Directory != nil && q != "" {
		res, err := s.Directory.Search(ctx, q, size)
		switch {
		case err != nil:
			s.Logger.WithError(err).Warn("directory search failed, scanning store")
		case len(res) > 0:
			return res, nil
		default:
			s.Logger.WithField("q", q).Debug("directory has no match, scanning store")
		}
	}

	all, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(q)
	out := make([]entity.PublicUser, 0, size)
	for _, u := range all {
		if len(out) == size {
			break
		}
		if strings.Contains(strings.ToLower(u.Username), needle) {
			out = append(out, u)
		}
	}
	return out, nil
}
