package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-site-api/internal/admin"
	"github.com/noah-isme/faculty-site-api/internal/middleware"
	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/internal/repository"
	"github.com/noah-isme/faculty-site-api/internal/service"
	"github.com/noah-isme/faculty-site-api/pkg/database"
	"github.com/noah-isme/faculty-site-api/web"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Status  int               `json:"status"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func performRequest(router http.Handler, method, path string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func jsonBody(v string) io.Reader { return strings.NewReader(v) }

var testAdmin = &models.CurrentUser{ID: "u-1", Email: "admin@faculty.test", Role: models.RoleAdmin, SessionID: "s-1"}

// allowAll stands in for the session guard.
func allowAll(c *gin.Context) {
	c.Set(middleware.ContextUserKey, testAdmin)
	c.Next()
}

type fakeAuth struct {
	loginErr  error
	loginReq  models.LoginRequest
	signedOut []*models.CurrentUser
}

func (f *fakeAuth) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.loginReq = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResponse{
		AccessToken: "signed-token",
		TokenType:   "Bearer",
		ExpiresIn:   3600,
		User:        models.CurrentUser{ID: "u-1", Email: req.Email, Role: models.RoleAdmin},
	}, nil
}

func (f *fakeAuth) SignOut(ctx context.Context, user *models.CurrentUser) error {
	f.signedOut = append(f.signedOut, user)
	return nil
}

type testApp struct {
	router  *gin.Engine
	content *service.Content
	auth    *fakeAuth
}

// newTestApp wires the real services over an in-memory database.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.Migrate(context.Background(), db, nil)
	require.NoError(t, err)

	gw := repository.NewGateway(db, nil)
	content := service.NewContent(gw, nil, nil, nil)
	exports := service.NewExportService()
	auth := &fakeAuth{}

	stores := map[string]admin.Store{
		content.Departments.Entity().Key:   admin.NewServiceStore(content.Departments),
		content.Programmes.Entity().Key:    admin.NewServiceStore(content.Programmes),
		content.Staff.Entity().Key:         admin.NewServiceStore(content.Staff),
		content.News.Entity().Key:          admin.NewServiceStore(content.News),
		content.ResearchAreas.Entity().Key: admin.NewServiceStore(content.ResearchAreas),
	}
	dashboard := service.NewDashboardService(gw, nil)

	router := gin.New()
	router.SetHTMLTemplate(web.MustParse())
	RegisterRoutes(router, "/api/v1", Handlers{
		Public:    NewPublicHandler(service.NewSiteService(gw, nil, 0)),
		Auth:      NewAuthHandler(auth),
		Dashboard: NewDashboardHandler(dashboard),
		Metrics:   NewMetricsHandler(service.NewMetricsService(), db),
		Panel:     NewAdminPanelHandler(stores, auth, dashboard, SessionCookie{Name: "faculty_session"}, nil),
		Entities: []EntityRoutes{
			NewEntityHandler[models.Department](content.Departments, exports),
			NewEntityHandler[models.Programme](content.Programmes, exports),
			NewEntityHandler[models.Staff](content.Staff, exports),
			NewEntityHandler[models.News](content.News, exports),
			NewEntityHandler[models.ResearchArea](content.ResearchAreas, exports),
		},
	}, allowAll, allowAll)

	return &testApp{router: router, content: content, auth: auth}
}
