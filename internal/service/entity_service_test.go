package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/internal/repository"
	"github.com/noah-isme/faculty-site-api/internal/schema"
	"github.com/noah-isme/faculty-site-api/pkg/database"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
)

type countingMutations struct {
	ops []string
}

func (c *countingMutations) RecordMutation(entity, op string) {
	c.ops = append(c.ops, entity+"."+op)
}

func newContent(t *testing.T) (*Content, *repository.Gateway, *countingMutations) {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.Migrate(context.Background(), db, nil)
	require.NoError(t, err)

	gw := repository.NewGateway(db, nil)
	metrics := &countingMutations{}
	return NewContent(gw, nil, nil, metrics), gw, metrics
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	return appErr.Fields
}

func TestEntityServiceCreateDerivesSlug(t *testing.T) {
	content, _, metrics := newContent(t)
	ctx := context.Background()

	dept, err := content.Departments.Create(ctx, map[string]interface{}{
		"name":               "Physics & Astronomy!!",
		"head_of_department": "  Dr. Vera Rubin ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, dept.ID)
	assert.Equal(t, "physics-astronomy", dept.Slug)
	assert.Equal(t, "Dr. Vera Rubin", dept.HeadOfDepartment)
	assert.Equal(t, "", dept.Description)
	assert.Equal(t, []string{"departments.create"}, metrics.ops)

	explicit, err := content.Departments.Create(ctx, map[string]interface{}{"name": "Chemistry", "slug": "Chem Lab 2"})
	require.NoError(t, err)
	assert.Equal(t, "chem-lab-2", explicit.Slug)
}

func TestEntityServiceCreateRequiresFields(t *testing.T) {
	content, _, _ := newContent(t)

	_, err := content.Programmes.Create(context.Background(), map[string]interface{}{
		"name":  "",
		"level": "Doctoral",
		"bogus": "x",
	})
	fields := fieldErrors(t, err)
	assert.Equal(t, "is required", fields["name"])
	assert.Contains(t, fields["level"], "must be one of")
	assert.Equal(t, "unknown field", fields["bogus"])
	assert.Equal(t, "is required", fields["slug"])
}

func TestEntityServiceValidatesFormats(t *testing.T) {
	content, _, _ := newContent(t)

	_, err := content.Staff.Create(context.Background(), map[string]interface{}{
		"name":          "Grace Hopper",
		"email":         "not-an-email",
		"profile_image": "nope",
		"bio":           42,
	})
	fields := fieldErrors(t, err)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be a valid URL", fields["profile_image"])
	assert.Equal(t, "must be a string", fields["bio"])
}

func TestEntityServiceReferenceHandling(t *testing.T) {
	content, _, _ := newContent(t)
	ctx := context.Background()

	_, err := content.Staff.Create(ctx, map[string]interface{}{"name": "Alan", "department_id": "missing"})
	fields := fieldErrors(t, err)
	assert.Equal(t, "department does not exist", fields["department_id"])

	dept, err := content.Departments.Create(ctx, map[string]interface{}{"name": "Computing"})
	require.NoError(t, err)

	member, err := content.Staff.Create(ctx, map[string]interface{}{"name": "Alan", "department_id": dept.ID})
	require.NoError(t, err)
	require.NotNil(t, member.Departments)
	assert.Equal(t, "Computing", member.Departments.Name)

	member, err = content.Staff.Update(ctx, member.ID, map[string]interface{}{"department_id": ""})
	require.NoError(t, err)
	assert.Nil(t, member.DepartmentID)
	assert.Nil(t, member.Departments)
}

func TestEntityServiceNewsPublishedAt(t *testing.T) {
	content, _, _ := newContent(t)
	ctx := context.Background()
	fixed := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	content.News.now = func() time.Time { return fixed }

	defaulted, err := content.News.Create(ctx, map[string]interface{}{"title": "Open day"})
	require.NoError(t, err)
	assert.True(t, defaulted.PublishedAt.Equal(fixed))

	local, err := content.News.Create(ctx, map[string]interface{}{"title": "Graduation", "published_at": "2024-07-15T10:00"})
	require.NoError(t, err)
	assert.True(t, local.PublishedAt.Equal(time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)))

	_, err = content.News.Create(ctx, map[string]interface{}{"title": "Bad", "published_at": "next tuesday"})
	fields := fieldErrors(t, err)
	assert.Contains(t, fields["published_at"], "must be a timestamp")

	_, err = content.News.Update(ctx, local.ID, map[string]interface{}{"published_at": ""})
	fields = fieldErrors(t, err)
	assert.Equal(t, "is required", fields["published_at"])
}

func TestEntityServiceUpdateIsPartial(t *testing.T) {
	content, _, _ := newContent(t)
	ctx := context.Background()

	prog, err := content.Programmes.Create(ctx, map[string]interface{}{
		"name": "BSc Physics", "level": "Undergraduate", "duration": "3 years", "description": "Core physics",
	})
	require.NoError(t, err)
	assert.Equal(t, "bsc-physics", prog.Slug)

	updated, err := content.Programmes.Update(ctx, prog.ID, map[string]interface{}{
		"duration": "4 years",
		"id":       "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, prog.ID, updated.ID)
	assert.Equal(t, "4 years", updated.Duration)
	assert.Equal(t, "BSc Physics", updated.Name)
	assert.Equal(t, "Core physics", updated.Description)
	assert.Equal(t, models.LevelUndergraduate, updated.Level)
	assert.Equal(t, "bsc-physics", updated.Slug)

	_, err = content.Programmes.Update(ctx, prog.ID, map[string]interface{}{"name": "   "})
	fields := fieldErrors(t, err)
	assert.Equal(t, "is required", fields["name"])

	renamed, err := content.Programmes.Update(ctx, prog.ID, map[string]interface{}{"name": "BSc Applied Physics", "slug": ""})
	require.NoError(t, err)
	assert.Equal(t, "bsc-applied-physics", renamed.Slug)
}

func TestEntityServiceDeleteThenNotFound(t *testing.T) {
	content, _, metrics := newContent(t)
	ctx := context.Background()

	area, err := content.ResearchAreas.Create(ctx, map[string]interface{}{"title": "Quantum Computing"})
	require.NoError(t, err)
	require.NoError(t, content.ResearchAreas.Delete(ctx, area.ID))

	items, err := content.ResearchAreas.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = content.ResearchAreas.Get(ctx, area.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	_, err = content.ResearchAreas.Update(ctx, area.ID, map[string]interface{}{"title": "Again"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	err = content.ResearchAreas.Delete(ctx, area.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "research area not found", appErrors.FromError(err).Message)

	assert.Equal(t, []string{"research-areas.create", "research-areas.delete"}, metrics.ops)
}

func TestEntityServiceListAndRecords(t *testing.T) {
	content, _, _ := newContent(t)
	ctx := context.Background()

	dept, err := content.Departments.Create(ctx, map[string]interface{}{"name": "History"})
	require.NoError(t, err)
	_, err = content.Programmes.Create(ctx, map[string]interface{}{"name": "MA History", "level": "Postgraduate", "department_id": dept.ID})
	require.NoError(t, err)
	_, err = content.Programmes.Create(ctx, map[string]interface{}{"name": "BA Classics", "level": "Undergraduate"})
	require.NoError(t, err)

	records, err := content.Programmes.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "BA Classics", records[0].String("name"))
	assert.NotContains(t, records[0], "departments")
	assert.Equal(t, "History", records[1].String("departments"))

	filtered, err := content.Programmes.List(ctx, ListQuery{Filter: map[string]interface{}{"level": "Postgraduate"}})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "MA History", filtered[0].Name)

	_, err = content.Programmes.List(ctx, ListQuery{OrderBy: []schema.Order{schema.Asc("nope")}})
	assert.True(t, appErrors.Is(err, appErrors.ErrBadRequest))

	total, err := content.Programmes.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

type failingGateway struct {
	contentGateway
	err error
}

func (f failingGateway) Insert(context.Context, *schema.Entity, map[string]interface{}) (string, error) {
	return "", f.err
}

func TestEntityServiceWriteFailureIsTyped(t *testing.T) {
	svc := NewEntityService[models.News](schema.News, failingGateway{err: errors.New("connection reset")}, nil, nil, nil)

	_, err := svc.Create(context.Background(), map[string]interface{}{"title": "Launch"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
	assert.Equal(t, "failed to create news article", appErr.Message)
}
