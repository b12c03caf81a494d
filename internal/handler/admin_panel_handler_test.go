package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
)

const formContentType = "application/x-www-form-urlencoded"

func postForm(app *testApp, path string, values url.Values) *httptest.ResponseRecorder {
	return performRequest(app.router, http.MethodPost, path, strings.NewReader(values.Encode()), "Content-Type", formContentType)
}

func TestAdminPanelLogin(t *testing.T) {
	app := newTestApp(t)

	rec := performRequest(app.router, http.MethodGet, "/admin/login?next=/admin/news", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin sign in")
	assert.Contains(t, rec.Body.String(), `value="/admin/news"`)

	rec = postForm(app, "/admin/login", url.Values{"email": {"admin@faculty.test"}, "password": {"secret"}, "next": {"/admin/news"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/news", rec.Header().Get("Location"))
	cookie := rec.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "faculty_session=signed-token")
	assert.Contains(t, cookie, "HttpOnly")

	app.auth.loginErr = appErrors.ErrInvalidCredentials
	rec = postForm(app, "/admin/login", url.Values{"email": {"admin@faculty.test"}, "password": {"wrong"}, "next": {"https://evil.test"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
	assert.Contains(t, rec.Body.String(), `value="/admin"`)
}

func TestAdminPanelLogout(t *testing.T) {
	app := newTestApp(t)

	rec := postForm(app, "/admin/logout", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "faculty_session=;")
	require.Len(t, app.auth.signedOut, 1)
}

func TestAdminPanelDashboard(t *testing.T) {
	app := newTestApp(t)
	_, err := app.content.Departments.Create(context.Background(), map[string]interface{}{"name": "Physics"})
	require.NoError(t, err)

	rec := performRequest(app.router, http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>1</strong>Departments")
	assert.Contains(t, body, "<strong>0</strong>Programmes")
	assert.Contains(t, body, "admin@faculty.test")
}

func TestAdminPanelCreateFlow(t *testing.T) {
	app := newTestApp(t)

	rec := performRequest(app.router, http.MethodGet, "/admin/departments/new", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Add Department")

	rec = postForm(app, "/admin/departments", url.Values{"name": {""}, "description": {"Keeps this text"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "invalid department payload")
	assert.Contains(t, body, "is required")
	assert.Contains(t, body, "Keeps this text")

	rec = postForm(app, "/admin/departments", url.Values{"name": {"Chemistry"}, "head_of_department": {"Dr. Curie"}, "slug": {""}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/departments", rec.Header().Get("Location"))

	rec = performRequest(app.router, http.MethodGet, "/admin/departments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>Chemistry</td>")
	assert.Contains(t, rec.Body.String(), "<td>chemistry</td>")
}

func TestAdminPanelEditFlow(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	dept, err := app.content.Departments.Create(ctx, map[string]interface{}{"name": "Physics"})
	require.NoError(t, err)
	programme, err := app.content.Programmes.Create(ctx, map[string]interface{}{"name": "Astrophysics", "level": "Postgraduate", "department_id": dept.ID})
	require.NoError(t, err)

	rec := performRequest(app.router, http.MethodGet, "/admin/programmes/"+programme.ID+"/edit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Edit Programme")
	assert.Contains(t, body, `<option value="`+dept.ID+`" selected>Physics</option>`)
	assert.Contains(t, body, `<option value="Postgraduate" selected>Postgraduate</option>`)

	rec = postForm(app, "/admin/programmes/"+programme.ID, url.Values{
		"name":          {"Astrophysics MSc"},
		"level":         {"Postgraduate"},
		"department_id": {""},
		"duration":      {"1 year"},
		"description":   {""},
		"slug":          {""},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	updated, err := app.content.Programmes.Get(ctx, programme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Astrophysics MSc", updated.Name)
	assert.Equal(t, "astrophysics-msc", updated.Slug)
	assert.Equal(t, "1 year", updated.Duration)
	assert.Nil(t, updated.DepartmentID)

	rec = performRequest(app.router, http.MethodGet, "/admin/programmes/missing/edit", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminPanelRenameUpdatesSlug(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	dept, err := app.content.Departments.Create(ctx, map[string]interface{}{"name": "Physics"})
	require.NoError(t, err)
	require.Equal(t, "physics", dept.Slug)

	rec := postForm(app, "/admin/departments/"+dept.ID, url.Values{
		"name":               {"Applied Physics"},
		"description":        {""},
		"head_of_department": {""},
		"slug":               {"physics"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	updated, err := app.content.Departments.Get(ctx, dept.ID)
	require.NoError(t, err)
	assert.Equal(t, "Applied Physics", updated.Name)
	assert.Equal(t, "applied-physics", updated.Slug)
}

func TestAdminPanelResaveKeepsPublishedAt(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	news, err := app.content.News.Create(ctx, map[string]interface{}{"title": "Open day", "published_at": "2024-02-01T10:15:42Z"})
	require.NoError(t, err)

	rec := performRequest(app.router, http.MethodGet, "/admin/news/"+news.ID+"/edit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `step="1"`)
	assert.Contains(t, rec.Body.String(), `value="2024-02-01T10:15:42"`)

	rec = postForm(app, "/admin/news/"+news.ID, url.Values{
		"title":        {"Open day 2024"},
		"content":      {""},
		"image":        {""},
		"published_at": {"2024-02-01T10:15:42"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	updated, err := app.content.News.Get(ctx, news.ID)
	require.NoError(t, err)
	assert.Equal(t, "Open day 2024", updated.Title)
	assert.True(t, news.PublishedAt.Equal(updated.PublishedAt), "published_at changed: %s -> %s", news.PublishedAt, updated.PublishedAt)
}

func TestAdminPanelDeleteNeedsConfirmation(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	news, err := app.content.News.Create(ctx, map[string]interface{}{"title": "Open day"})
	require.NoError(t, err)
	base := "/admin/news/" + news.ID + "/delete"

	rec := performRequest(app.router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Are you sure you want to delete this news article?")

	rec = postForm(app, base, url.Values{"confirm": {"no"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	_, err = app.content.News.Get(ctx, news.ID)
	require.NoError(t, err)

	rec = postForm(app, base, url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	_, err = app.content.News.Get(ctx, news.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAdminPanelUnknownEntity(t *testing.T) {
	app := newTestApp(t)
	rec := performRequest(app.router, http.MethodGet, "/admin/alumni", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown section")
}
