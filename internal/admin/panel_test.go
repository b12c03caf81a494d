package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-site-api/internal/repository"
	"github.com/noah-isme/faculty-site-api/internal/schema"
	"github.com/noah-isme/faculty-site-api/internal/service"
	"github.com/noah-isme/faculty-site-api/pkg/database"
)

type fakeStore struct {
	records   []schema.Record
	listCalls int
	listErr   error
	writeErr  error
	created   []map[string]interface{}
	updated   map[string]map[string]interface{}
	deleted   []string
}

func (s *fakeStore) List(ctx context.Context) ([]schema.Record, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]schema.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (schema.Record, error) {
	for _, rec := range s.records {
		if rec.ID() == id {
			return rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) Create(ctx context.Context, payload map[string]interface{}) (schema.Record, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	s.created = append(s.created, payload)
	rec := schema.Record{"id": fmt.Sprintf("id-%d", len(s.records)+1)}
	for k, v := range payload {
		rec[k] = v
	}
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *fakeStore) Update(ctx context.Context, id string, payload map[string]interface{}) (schema.Record, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	if s.updated == nil {
		s.updated = map[string]map[string]interface{}{}
	}
	s.updated[id] = payload
	return schema.Record{"id": id}, nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.deleted = append(s.deleted, id)
	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.ID() != id {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	return nil
}

func answer(yes bool, asked *string) Confirmer {
	return ConfirmFunc(func(prompt string) bool {
		*asked = prompt
		return yes
	})
}

func TestPanelRefreshFailureLeavesEmptyList(t *testing.T) {
	store := &fakeStore{records: []schema.Record{{"id": "d-1"}}}
	panel := NewPanel(schema.Departments, store, nil)
	require.NoError(t, panel.Refresh(context.Background()))
	require.Len(t, panel.Items(), 1)

	store.listErr = errors.New("db down")
	assert.Error(t, panel.Refresh(context.Background()))
	assert.Empty(t, panel.Items())
	assert.EqualError(t, panel.ListErr(), "db down")
}

func TestPanelSubmitCreateRefetches(t *testing.T) {
	store := &fakeStore{}
	panel := NewPanel(schema.Departments, store, nil)
	ctx := context.Background()

	require.NoError(t, panel.Add())
	require.NoError(t, panel.Form().Set("name", "Physics"))
	require.NoError(t, panel.Submit(ctx))

	require.Len(t, store.created, 1)
	assert.Equal(t, "physics", store.created[0]["slug"])
	assert.Equal(t, 1, store.listCalls)
	require.Len(t, panel.Items(), 1)
	assert.Equal(t, StateIdle, panel.Form().State())
}

func TestPanelSubmitEditUpdatesTarget(t *testing.T) {
	store := &fakeStore{records: []schema.Record{{"id": "d-1", "name": "Physics", "slug": "physics"}}}
	panel := NewPanel(schema.Departments, store, nil)
	ctx := context.Background()

	require.NoError(t, panel.Edit(ctx, "d-1"))
	assert.Equal(t, "Physics", panel.Form().Value("name"))
	require.NoError(t, panel.Form().Set("head_of_department", "Dr. Rubin"))
	require.NoError(t, panel.Submit(ctx))

	require.Contains(t, store.updated, "d-1")
	assert.Equal(t, "Dr. Rubin", store.updated["d-1"]["head_of_department"])
	assert.Equal(t, 1, store.listCalls)
}

func TestPanelEditMissingRecord(t *testing.T) {
	panel := NewPanel(schema.Departments, &fakeStore{}, nil)
	err := panel.Edit(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Equal(t, StateIdle, panel.Form().State())
}

func TestPanelSubmitFailureKeepsForm(t *testing.T) {
	store := &fakeStore{writeErr: errors.New("insert failed")}
	panel := NewPanel(schema.Departments, store, nil)

	require.NoError(t, panel.Add())
	require.NoError(t, panel.Form().Set("name", "Physics"))
	err := panel.Submit(context.Background())

	assert.EqualError(t, err, "insert failed")
	assert.Equal(t, StateCreating, panel.Form().State())
	assert.Equal(t, "Physics", panel.Form().Value("name"))
	assert.Equal(t, 0, store.listCalls)
}

func TestPanelDeleteRequiresConfirmation(t *testing.T) {
	store := &fakeStore{records: []schema.Record{{"id": "p-1"}}}
	panel := NewPanel(schema.Programmes, store, nil)
	ctx := context.Background()

	var asked string
	confirmed, err := panel.Delete(ctx, "p-1", answer(false, &asked))
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.Equal(t, "Are you sure you want to delete this programme?", asked)
	assert.Empty(t, store.deleted)
	assert.Equal(t, 0, store.listCalls)

	confirmed, err = panel.Delete(ctx, "p-1", answer(true, &asked))
	require.NoError(t, err)
	assert.True(t, confirmed)
	assert.Equal(t, []string{"p-1"}, store.deleted)
	assert.Equal(t, 1, store.listCalls)
	assert.Empty(t, panel.Items())

	confirmed, err = panel.Delete(ctx, "p-1", nil)
	require.NoError(t, err)
	assert.False(t, confirmed)
}

func TestPanelDeleteFailureSkipsRefetch(t *testing.T) {
	store := &fakeStore{writeErr: errors.New("locked")}
	panel := NewPanel(schema.News, store, nil)
	var asked string

	confirmed, err := panel.Delete(context.Background(), "n-1", answer(true, &asked))
	assert.True(t, confirmed)
	assert.EqualError(t, err, "locked")
	assert.Equal(t, 0, store.listCalls)
}

func TestPanelOptionsFromLookup(t *testing.T) {
	departments := &fakeStore{records: []schema.Record{
		{"id": "d-1", "name": "Chemistry"},
		{"id": "d-2", "name": "Physics"},
	}}
	panel := NewPanel(schema.Staff, &fakeStore{}, nil).WithLookup("department_id", DepartmentLookup(departments))

	options, err := panel.Options(context.Background(), "department_id")
	require.NoError(t, err)
	assert.Equal(t, []Option{{Value: "d-1", Label: "Chemistry"}, {Value: "d-2", Label: "Physics"}}, options)

	none, err := panel.Options(context.Background(), "name")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPanelWithServiceStore(t *testing.T) {
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.Migrate(context.Background(), db, nil)
	require.NoError(t, err)

	content := service.NewContent(repository.NewGateway(db, nil), nil, nil, nil)
	ctx := context.Background()
	dept, err := content.Departments.Create(ctx, map[string]interface{}{"name": "Physics"})
	require.NoError(t, err)

	departments := NewServiceStore(content.Departments)
	panel := NewPanel(schema.Programmes, NewServiceStore(content.Programmes), nil).
		WithLookup("department_id", DepartmentLookup(departments))

	require.NoError(t, panel.Add())
	require.NoError(t, panel.Form().SetAll(map[string]string{
		"name":          "Astrophysics MSc",
		"level":         schema.LevelPostgraduate,
		"department_id": dept.ID,
	}))
	require.NoError(t, panel.Submit(ctx))

	require.Len(t, panel.Items(), 1)
	item := panel.Items()[0]
	assert.Equal(t, "astrophysics-msc", item.String("slug"))
	assert.Equal(t, "Physics", item.String("departments"))

	require.NoError(t, panel.Add())
	require.NoError(t, panel.Form().Set("name", ""))
	err = panel.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, StateCreating, panel.Form().State())
	assert.Equal(t, "is required", panel.Form().FieldErrors()["name"])
}
