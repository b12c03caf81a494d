package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/internal/service"
)

type fakeSite struct {
	programmeCalls int
	programmes     []models.Programme
	departments    []models.Department
	news           []models.News
}

func (f *fakeSite) Home(ctx context.Context) models.HomePage {
	return models.HomePage{News: f.news}
}

func (f *fakeSite) Departments(ctx context.Context) []models.Department { return f.departments }

func (f *fakeSite) DepartmentBySlug(ctx context.Context, slug string) (*models.Department, bool) {
	for i := range f.departments {
		if f.departments[i].Slug == slug {
			return &f.departments[i], true
		}
	}
	return nil, false
}

func (f *fakeSite) Programmes(ctx context.Context) service.ProgrammeCatalog {
	f.programmeCalls++
	return service.ProgrammeCatalog{Items: f.programmes}
}

func (f *fakeSite) Research(ctx context.Context) []models.ResearchArea { return nil }

func (f *fakeSite) News(ctx context.Context) []models.News { return f.news }

func newPublicRouter(site *fakeSite) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, "/api/v1", Handlers{Public: NewPublicHandler(site)}, allowAll, allowAll)
	return router
}

func TestPublicProgrammesFilterByLevel(t *testing.T) {
	site := &fakeSite{programmes: []models.Programme{
		{Name: "Biology", Level: models.LevelUndergraduate},
		{Name: "Chemistry", Level: models.LevelUndergraduate},
		{Name: "Astrophysics", Level: models.LevelPostgraduate},
	}}
	router := newPublicRouter(site)

	rec := performRequest(router, http.MethodGet, "/api/v1/programmes?level=Postgraduate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Programme
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Astrophysics", list[0].Name)
	assert.Equal(t, "Postgraduate", env.Meta["level"])

	rec = performRequest(router, http.MethodGet, "/api/v1/programmes", nil)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &list))
	assert.Len(t, list, 3)

	rec = performRequest(router, http.MethodGet, "/api/v1/programmes?level=Doctorate", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, site.programmeCalls)
}

func TestPublicDepartmentBySlug(t *testing.T) {
	router := newPublicRouter(&fakeSite{departments: []models.Department{{ID: "d-1", Name: "Physics", Slug: "physics"}}})

	rec := performRequest(router, http.MethodGet, "/api/v1/departments/physics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dept models.Department
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &dept))
	assert.Equal(t, "d-1", dept.ID)

	rec = performRequest(router, http.MethodGet, "/api/v1/departments/chemistry", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicEmptyListsEncodeAsArrays(t *testing.T) {
	router := newPublicRouter(&fakeSite{})

	for _, path := range []string{"/api/v1/departments", "/api/v1/research", "/api/v1/news"} {
		rec := performRequest(router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data), path)
	}
}

func TestPublicHome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	published := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	h := NewPublicHandler(&fakeSite{news: []models.News{{ID: "n-1", Title: "Open day", PublishedAt: published}}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/home", nil)
	h.Home(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var page models.HomePage
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &page))
	require.Len(t, page.News, 1)
	assert.Equal(t, "Open day", page.News[0].Title)
}

func TestPublicHomeOverDatabase(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	for _, day := range []string{"2024-01-01", "2024-03-01", "2024-02-01", "2023-12-01"} {
		_, err := app.content.News.Create(ctx, map[string]interface{}{"title": "News " + day, "published_at": day})
		require.NoError(t, err)
	}

	rec := performRequest(app.router, http.MethodGet, "/api/v1/home", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page models.HomePage
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &page))
	require.Len(t, page.News, 3)
	assert.Equal(t, "News 2024-03-01", page.News[0].Title)
	assert.Equal(t, "News 2024-02-01", page.News[1].Title)
	assert.Equal(t, "News 2024-01-01", page.News[2].Title)
}
