// Package views holds the HTML pages served by the registry.
package views

import (
	"embed"
	htmpl "html/template"
	"reflect"
	"strings"
	"time"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
)

//go:embed templates/*.html
var FS embed.FS

// Page names
const (
	UsersPage = "users.html"
	LoginPage = "login.html"
)

// PageData is the context every page template receives.
type PageData struct {
	AppName   string
	Title     string
	Users     []entity.PublicUser
	Username  string // echoed back into forms, never the password
	Message   string
	Error     string
	Now       time.Time
	RequestID string
}

// Option pattern
type Option func(*PageData)

func WithUsers(users []entity.PublicUser) Option { return func(d *PageData) { d.Users = users } }
func WithUsername(u string) Option              { return func(d *PageData) { d.Username = u } }
func WithMessage(m string) Option               { return func(d *PageData) { d.Message = m } }
func WithError(e string) Option                 { return func(d *PageData) { d.Error = e } }
func WithRequestID(id string) Option            { return func(d *PageData) { d.RequestID = id } }

func NewPageData(appName, title string, opts ...Option) PageData {
	d := PageData{AppName: appName, Title: title, Now: time.Now().UTC()}
	for _, o := range opts {
		o(&d)
	}
	return d
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		if rv.IsZero() {
			return fallback
		}
		return value
	}
}

func funcs() htmpl.FuncMap {
	return htmpl.FuncMap{
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
	}
}

// Load parses every embedded page into one template set, named by file.
func Load() (*htmpl.Template, error) {
	return htmpl.New("").Funcs(funcs()).ParseFS(FS, "templates/*.html")
}
