package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-site-api/internal/schema"
)

const (
	baseAlias = "t"
	refAlias  = "r"
)

// ErrUnknownColumn is returned when a filter, ordering or write names a
// column the entity does not have.
var ErrUnknownColumn = errors.New("unknown column")

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// ListOptions narrows and orders a listing. An empty OrderBy falls back to
// the entity's default order; a nil filter value matches NULL.
type ListOptions struct {
	OrderBy        []schema.Order
	Filter         map[string]interface{}
	Limit          int
	EmbedReference bool
}

// Gateway is the table-oriented query client shared by every content entity.
type Gateway struct {
	db      *sqlx.DB
	metrics queryObserver
	now     func() time.Time
}

// NewGateway constructs a Gateway. metrics may be nil.
func NewGateway(db *sqlx.DB, metrics queryObserver) *Gateway {
	return &Gateway{db: db, metrics: metrics, now: func() time.Time { return time.Now().UTC() }}
}

func (g *Gateway) observe(e *schema.Entity, op string, start time.Time) {
	if g.metrics != nil {
		g.metrics.ObserveDBQuery(e.Table+"."+op, time.Since(start))
	}
}

func (g *Gateway) selectClause(e *schema.Entity, embed bool) (string, error) {
	cols := e.Columns()
	parts := make([]string, 0, len(cols)+1)
	for _, col := range cols {
		parts = append(parts, baseAlias+"."+col)
	}
	from := e.Table + " " + baseAlias

	if embed {
		ref, ok := e.Reference()
		if !ok {
			return "", fmt.Errorf("%s has no reference to embed", e.Table)
		}
		parts = append(parts, fmt.Sprintf("%s.%s AS %s", refAlias, ref.Display, ref.EmbedAs))
		from += fmt.Sprintf(" LEFT JOIN %s %s ON %s.id = %s.%s", ref.References, refAlias, refAlias, baseAlias, ref.Name)
	}

	return "SELECT " + strings.Join(parts, ", ") + " FROM " + from, nil
}

// List selects rows of e into dest, which must be a pointer to a slice.
func (g *Gateway) List(ctx context.Context, e *schema.Entity, opts ListOptions, dest interface{}) error {
	query, err := g.selectClause(e, opts.EmbedReference)
	if err != nil {
		return err
	}

	var args []interface{}
	if len(opts.Filter) > 0 {
		keys := make([]string, 0, len(opts.Filter))
		for k := range opts.Filter {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		conditions := make([]string, 0, len(keys))
		for _, k := range keys {
			if !e.HasColumn(k) {
				return fmt.Errorf("filter %s.%s: %w", e.Table, k, ErrUnknownColumn)
			}
			if opts.Filter[k] == nil {
				conditions = append(conditions, baseAlias+"."+k+" IS NULL")
				continue
			}
			conditions = append(conditions, baseAlias+"."+k+" = ?")
			args = append(args, opts.Filter[k])
		}
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	order := opts.OrderBy
	if len(order) == 0 {
		order = e.DefaultOrder
	}
	if len(order) > 0 {
		terms := make([]string, 0, len(order))
		for _, o := range order {
			if !e.HasColumn(o.Column) {
				return fmt.Errorf("order %s.%s: %w", e.Table, o.Column, ErrUnknownColumn)
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			terms = append(terms, baseAlias+"."+o.Column+" "+dir)
		}
		query += " ORDER BY " + strings.Join(terms, ", ")
	}

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	defer g.observe(e, "list", time.Now())
	if err := g.db.SelectContext(ctx, dest, g.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("list %s: %w", e.Table, err)
	}
	return nil
}

// Get loads a single row by id, embedding the reference when the entity has
// one. Missing rows return sql.ErrNoRows.
func (g *Gateway) Get(ctx context.Context, e *schema.Entity, id string, dest interface{}) error {
	_, embed := e.Reference()
	query, err := g.selectClause(e, embed)
	if err != nil {
		return err
	}
	query += " WHERE " + baseAlias + ".id = ?"

	defer g.observe(e, "get", time.Now())
	if err := g.db.GetContext(ctx, dest, g.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("get %s: %w", e.Table, err)
	}
	return nil
}

// Count returns the number of rows in the entity table.
func (g *Gateway) Count(ctx context.Context, e *schema.Entity) (int, error) {
	defer g.observe(e, "count", time.Now())
	var total int
	if err := g.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM "+e.Table); err != nil {
		return 0, fmt.Errorf("count %s: %w", e.Table, err)
	}
	return total, nil
}

// Exists reports whether a row with id exists.
func (g *Gateway) Exists(ctx context.Context, e *schema.Entity, id string) (bool, error) {
	defer g.observe(e, "exists", time.Now())
	var total int
	if err := g.db.GetContext(ctx, &total, g.db.Rebind("SELECT COUNT(*) FROM "+e.Table+" WHERE id = ?"), id); err != nil {
		return false, fmt.Errorf("check %s exists: %w", e.Table, err)
	}
	return total > 0, nil
}

// writableColumns drops the audit columns and validates the rest, returning
// the remaining keys in sorted order.
func writableColumns(e *schema.Entity, values map[string]interface{}) ([]string, error) {
	cols := make([]string, 0, len(values))
	for k := range values {
		switch k {
		case schema.ColumnID, schema.ColumnCreatedAt, schema.ColumnUpdatedAt:
			continue
		}
		if _, ok := e.Field(k); !ok {
			return nil, fmt.Errorf("write %s.%s: %w", e.Table, k, ErrUnknownColumn)
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols, nil
}

// Insert stores a new row and returns its generated id. Any id or audit
// timestamps in values are ignored.
func (g *Gateway) Insert(ctx context.Context, e *schema.Entity, values map[string]interface{}) (string, error) {
	cols, err := writableColumns(e, values)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := g.now()

	names := append([]string{schema.ColumnID}, cols...)
	names = append(names, schema.ColumnCreatedAt, schema.ColumnUpdatedAt)
	args := make([]interface{}, 0, len(names))
	args = append(args, id)
	for _, c := range cols {
		args = append(args, values[c])
	}
	args = append(args, now, now)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", e.Table, strings.Join(names, ", "), placeholders)

	defer g.observe(e, "insert", time.Now())
	if _, err := g.db.ExecContext(ctx, g.db.Rebind(query), args...); err != nil {
		return "", fmt.Errorf("insert %s: %w", e.Table, err)
	}
	return id, nil
}

// Update changes only the supplied columns of the row plus updated_at.
// A missing row returns sql.ErrNoRows.
func (g *Gateway) Update(ctx context.Context, e *schema.Entity, id string, values map[string]interface{}) error {
	cols, err := writableColumns(e, values)
	if err != nil {
		return err
	}

	sets := make([]string, 0, len(cols)+1)
	args := make([]interface{}, 0, len(cols)+2)
	for _, c := range cols {
		sets = append(sets, c+" = ?")
		args = append(args, values[c])
	}
	sets = append(sets, schema.ColumnUpdatedAt+" = ?")
	args = append(args, g.now(), id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", e.Table, strings.Join(sets, ", "))

	defer g.observe(e, "update", time.Now())
	res, err := g.db.ExecContext(ctx, g.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", e.Table, err)
	}
	return requireAffected(res, e, "update")
}

// Delete removes the row. Rows in other tables referencing it have their
// reference cleared in the same transaction.
func (g *Gateway) Delete(ctx context.Context, e *schema.Entity, id string) error {
	defer g.observe(e, "delete", time.Now())

	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", e.Table, err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := g.now()
	for _, ref := range schema.Referrers(e) {
		query := fmt.Sprintf("UPDATE %s SET %s = NULL, updated_at = ? WHERE %s = ?", ref.Entity.Table, ref.Column, ref.Column)
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), now, id); err != nil {
			return fmt.Errorf("detach %s from %s: %w", ref.Entity.Table, e.Table, err)
		}
	}

	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM "+e.Table+" WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", e.Table, err)
	}
	if err := requireAffected(res, e, "delete"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete %s: %w", e.Table, err)
	}
	return nil
}

func requireAffected(res sql.Result, e *schema.Entity, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s rows affected: %w", op, e.Table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
