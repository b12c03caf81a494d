package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-site-api/internal/middleware"
	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/internal/schema"
	"github.com/noah-isme/faculty-site-api/internal/service"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
)

func currentUser(c *gin.Context) *models.CurrentUser {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return user
}

// listQueryFromRequest reads ?sort=name,-published_at&limit=n plus equality
// filters on enum and reference columns. A reference filter of "null"
// matches rows without a department.
func listQueryFromRequest(c *gin.Context, e *schema.Entity) (service.ListQuery, error) {
	var q service.ListQuery

	if raw := strings.TrimSpace(c.Query("sort")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if strings.HasPrefix(part, "-") {
				q.OrderBy = append(q.OrderBy, schema.Desc(strings.TrimPrefix(part, "-")))
			} else {
				q.OrderBy = append(q.OrderBy, schema.Asc(part))
			}
		}
	}

	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return q, appErrors.Clone(appErrors.ErrBadRequest, "limit must be a non-negative integer")
		}
		q.Limit = limit
	}

	for _, f := range e.Fields {
		if f.Kind != schema.KindEnum && f.Kind != schema.KindReference {
			continue
		}
		value, ok := c.GetQuery(f.Name)
		if !ok {
			continue
		}
		if q.Filter == nil {
			q.Filter = map[string]interface{}{}
		}
		if f.Kind == schema.KindReference && (value == "" || value == "null") {
			q.Filter[f.Name] = nil
			continue
		}
		q.Filter[f.Name] = value
	}
	return q, nil
}
