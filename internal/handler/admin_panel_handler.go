package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-site-api/internal/admin"
	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/internal/schema"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
)

// SessionCookie describes the cookie carrying the admin token.
type SessionCookie struct {
	Name   string
	Secure bool
}

type pageData struct {
	Title       string
	Active      string
	User        *models.CurrentUser
	Entities    []*schema.Entity
	Counts      models.ContentCounts
	Entity      *schema.Entity
	Items       []schema.Record
	Form        *admin.Form
	Options     map[string][]admin.Option
	FieldErrors map[string]string
	Error       string
	Prompt      string
	RecordID    string
	Next        string
	Email       string
}

// AdminPanelHandler renders the HTML admin panel. A panel is built per
// request, so every page reflects a fresh fetch.
type AdminPanelHandler struct {
	stores    map[string]admin.Store
	auth      authService
	dashboard dashboardService
	cookie    SessionCookie
	logger    *zap.Logger
}

// NewAdminPanelHandler constructs the handler. stores is keyed by entity key.
func NewAdminPanelHandler(stores map[string]admin.Store, auth authService, dashboard dashboardService, cookie SessionCookie, logger *zap.Logger) *AdminPanelHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminPanelHandler{stores: stores, auth: auth, dashboard: dashboard, cookie: cookie, logger: logger}
}

func (h *AdminPanelHandler) page(c *gin.Context, title, active string) pageData {
	return pageData{Title: title, Active: active, User: currentUser(c), Entities: schema.All()}
}

func (h *AdminPanelHandler) panel(c *gin.Context) (*admin.Panel, bool) {
	e, ok := schema.ByKey(c.Param("entity"))
	store, found := h.stores[c.Param("entity")]
	if !ok || !found {
		h.fail(c, http.StatusNotFound, "Not found", "unknown section")
		return nil, false
	}
	p := admin.NewPanel(e, store, h.logger)
	if ref, has := e.Reference(); has {
		if departments, ok := h.stores[schema.Departments.Key]; ok {
			p.WithLookup(ref.Name, admin.DepartmentLookup(departments))
		}
	}
	return p, true
}

func (h *AdminPanelHandler) fail(c *gin.Context, status int, title, message string) {
	data := h.page(c, title, "")
	data.Error = message
	c.HTML(status, "error.html", data)
}

// LoginPage renders the sign-in form.
func (h *AdminPanelHandler) LoginPage(c *gin.Context) {
	data := h.page(c, "Sign in", "")
	data.Next = safeNext(c.Query("next"))
	c.HTML(http.StatusOK, "login.html", data)
}

// Login signs in and stores the token in an HttpOnly cookie.
func (h *AdminPanelHandler) Login(c *gin.Context) {
	req := models.LoginRequest{
		Email:     c.PostForm("email"),
		Password:  c.PostForm("password"),
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
	next := safeNext(c.PostForm("next"))

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		appErr := appErrors.FromError(err)
		data := h.page(c, "Sign in", "")
		data.Error = appErr.Message
		data.Email = req.Email
		data.Next = next
		c.HTML(appErr.Status, "login.html", data)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, res.AccessToken, int(res.ExpiresIn), "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusSeeOther, next)
}

// Logout revokes the session and clears the cookie.
func (h *AdminPanelHandler) Logout(c *gin.Context) {
	if user := currentUser(c); user != nil {
		if err := h.auth.SignOut(c.Request.Context(), user); err != nil {
			h.logger.Warn("sign out failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusSeeOther, "/admin/login")
}

// Dashboard renders the per-table counts.
func (h *AdminPanelHandler) Dashboard(c *gin.Context) {
	data := h.page(c, "Dashboard", "dashboard")
	data.Counts = h.dashboard.Counts(c.Request.Context())
	c.HTML(http.StatusOK, "dashboard.html", data)
}

// List renders the entity table.
func (h *AdminPanelHandler) List(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	data := h.page(c, p.Entity().Plural, p.Entity().Key)
	data.Entity = p.Entity()
	if err := p.Refresh(c.Request.Context()); err != nil {
		data.Error = "Could not load " + strings.ToLower(p.Entity().Plural) + "."
	}
	data.Items = p.Items()
	c.HTML(http.StatusOK, "list.html", data)
}

// New renders a blank form.
func (h *AdminPanelHandler) New(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	if err := p.Add(); err != nil {
		h.fail(c, http.StatusConflict, "Form unavailable", err.Error())
		return
	}
	h.renderForm(c, p, http.StatusOK)
}

// Edit renders the form pre-filled with the record.
func (h *AdminPanelHandler) Edit(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	if err := p.Edit(c.Request.Context(), c.Param("id")); err != nil {
		appErr := appErrors.FromError(err)
		h.fail(c, appErr.Status, "Cannot edit", appErr.Message)
		return
	}
	h.renderForm(c, p, http.StatusOK)
}

// Create submits a new record.
func (h *AdminPanelHandler) Create(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	if err := p.Add(); err != nil {
		h.fail(c, http.StatusConflict, "Form unavailable", err.Error())
		return
	}
	h.submit(c, p)
}

// Update submits changes to an existing record.
func (h *AdminPanelHandler) Update(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	if err := p.Edit(c.Request.Context(), c.Param("id")); err != nil {
		appErr := appErrors.FromError(err)
		h.fail(c, appErr.Status, "Cannot edit", appErr.Message)
		return
	}
	h.submit(c, p)
}

func (h *AdminPanelHandler) submit(c *gin.Context, p *admin.Panel) {
	values := map[string]string{}
	for _, f := range p.Entity().Fields {
		if v, ok := c.GetPostForm(f.Name); ok {
			values[f.Name] = v
		}
	}
	if err := p.Form().SetAll(values); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid form", err.Error())
		return
	}

	if err := p.Submit(c.Request.Context()); err != nil {
		if errors.Is(err, admin.ErrInvalidTransition) {
			h.fail(c, http.StatusConflict, "Form unavailable", err.Error())
			return
		}
		h.renderForm(c, p, appErrors.FromError(err).Status)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/"+p.Entity().Key)
}

func (h *AdminPanelHandler) renderForm(c *gin.Context, p *admin.Panel, status int) {
	form := p.Form()
	data := h.page(c, form.Heading(), p.Entity().Key)
	data.Entity = p.Entity()
	data.Form = form
	data.Options = h.options(c.Request.Context(), p)
	data.FieldErrors = form.FieldErrors()
	if err := form.Err(); err != nil {
		data.Error = appErrors.FromError(err).Message
	}
	c.HTML(status, "form.html", data)
}

func (h *AdminPanelHandler) options(ctx context.Context, p *admin.Panel) map[string][]admin.Option {
	out := map[string][]admin.Option{}
	for _, f := range p.Entity().Fields {
		if f.Kind != schema.KindReference {
			continue
		}
		opts, err := p.Options(ctx, f.Name)
		if err != nil {
			h.logger.Warn("load options failed", zap.String("field", f.Name), zap.Error(err))
			continue
		}
		out[f.Name] = opts
	}
	return out
}

// ConfirmDelete asks before deleting.
func (h *AdminPanelHandler) ConfirmDelete(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	data := h.page(c, "Delete "+p.Entity().Title(), p.Entity().Key)
	data.Entity = p.Entity()
	data.Prompt = p.DeletePrompt()
	data.RecordID = c.Param("id")
	c.HTML(http.StatusOK, "confirm.html", data)
}

// Delete removes the record when the operator answered yes.
func (h *AdminPanelHandler) Delete(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	answer := admin.ConfirmFunc(func(string) bool { return c.PostForm("confirm") == "yes" })
	if _, err := p.Delete(c.Request.Context(), c.Param("id"), answer); err != nil {
		appErr := appErrors.FromError(err)
		h.fail(c, appErr.Status, "Delete failed", appErr.Message)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/"+p.Entity().Key)
}

func safeNext(next string) string {
	if strings.HasPrefix(next, "/admin") && !strings.HasPrefix(next, "/admin/login") {
		return next
	}
	return "/admin"
}
