package views

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
)

func TestLoad_RendersUsersPage(t *testing.T) {
	tmpl, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	data := NewPageData("registry", "users",
		WithUsers([]entity.PublicUser{{Username: "Daniel"}, {Username: "<script>"}}),
		WithMessage("user Daniel created"),
	)
	require.NoError(t, tmpl.ExecuteTemplate(&buf, UsersPage, data))

	out := buf.String()
	assert.Contains(t, out, "<li>Daniel</li>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "user Daniel created")
	assert.NotContains(t, out, `class="error"`)
}

func TestLoad_RendersEmptyList(t *testing.T) {
	tmpl, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, UsersPage, NewPageData("", "users")))
	assert.Contains(t, buf.String(), "no users yet")
	assert.Contains(t, buf.String(), "<title>users · users</title>")
}

func TestLoad_RendersLoginPage(t *testing.T) {
	tmpl, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	data := NewPageData("registry", "login", WithUsername("alice"), WithError("login failed"))
	require.NoError(t, tmpl.ExecuteTemplate(&buf, LoginPage, data))
	assert.Contains(t, buf.String(), `value="alice"`)
	assert.Contains(t, buf.String(), "login failed")
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "fb", defaultFn("fb", ""))
	assert.Equal(t, "fb", defaultFn("fb", nil))
	assert.Equal(t, "fb", defaultFn("fb", 0))
	assert.Equal(t, 3, defaultFn("fb", 3))
	assert.Equal(t, "x", defaultFn("fb", "x"))
}
