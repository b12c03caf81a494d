package schema

// Programme levels.
const (
	LevelUndergraduate = "Undergraduate"
	LevelPostgraduate  = "Postgraduate"
)

func departmentRef() Field {
	return Field{
		Name:       "department_id",
		Label:      "Department",
		Kind:       KindReference,
		References: "departments",
		Display:    "name",
		EmbedAs:    "department_name",
		Listed:     true,
	}
}

var (
	Departments = &Entity{
		Key:      "departments",
		Table:    "departments",
		Singular: "department",
		Plural:   "Departments",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Listed: true},
			{Name: "description", Label: "Description", Kind: KindLongText},
			{Name: "head_of_department", Label: "Head of Department", Kind: KindText, Listed: true},
			{Name: "slug", Label: "Slug", Kind: KindSlug, Required: true, SlugOf: "name", Listed: true},
		},
		DefaultOrder: []Order{Asc("name")},
	}

	Programmes = &Entity{
		Key:      "programmes",
		Table:    "programmes",
		Singular: "programme",
		Plural:   "Programmes",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Listed: true},
			{Name: "level", Label: "Level", Kind: KindEnum, Required: true, Options: []string{LevelUndergraduate, LevelPostgraduate}, Listed: true},
			departmentRef(),
			{Name: "duration", Label: "Duration", Kind: KindText, Listed: true},
			{Name: "description", Label: "Description", Kind: KindLongText},
			{Name: "slug", Label: "Slug", Kind: KindSlug, Required: true, SlugOf: "name"},
		},
		DefaultOrder: []Order{Asc("name")},
	}

	Staff = &Entity{
		Key:      "staff",
		Table:    "staff",
		Singular: "staff member",
		Plural:   "Staff",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Listed: true},
			{Name: "position", Label: "Position", Kind: KindText, Listed: true},
			departmentRef(),
			{Name: "email", Label: "Email", Kind: KindEmail, Listed: true},
			{Name: "profile_image", Label: "Profile Image URL", Kind: KindURL},
			{Name: "bio", Label: "Bio", Kind: KindLongText},
		},
		DefaultOrder: []Order{Asc("name")},
	}

	News = &Entity{
		Key:      "news",
		Table:    "news",
		Singular: "news article",
		Plural:   "News",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Listed: true},
			{Name: "content", Label: "Content", Kind: KindLongText},
			{Name: "image", Label: "Image URL", Kind: KindURL},
			{Name: "published_at", Label: "Published At", Kind: KindTimestamp, Required: true, DefaultNow: true, Listed: true},
		},
		DefaultOrder: []Order{Desc("published_at")},
	}

	ResearchAreas = &Entity{
		Key:      "research-areas",
		Table:    "research_areas",
		Singular: "research area",
		Plural:   "Research Areas",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Listed: true},
			{Name: "description", Label: "Description", Kind: KindLongText},
			departmentRef(),
		},
		DefaultOrder: []Order{Asc("title")},
	}
)

var registry = []*Entity{Departments, Programmes, Staff, News, ResearchAreas}

// All returns the registered entities in navigation order.
func All() []*Entity {
	out := make([]*Entity, len(registry))
	copy(out, registry)
	return out
}

// ByKey resolves an entity by its route key.
func ByKey(key string) (*Entity, bool) {
	for _, e := range registry {
		if e.Key == key {
			return e, true
		}
	}
	return nil, false
}

// ByTable resolves an entity by table name.
func ByTable(table string) (*Entity, bool) {
	for _, e := range registry {
		if e.Table == table {
			return e, true
		}
	}
	return nil, false
}

// Referrer is a column in another table that points at an entity.
type Referrer struct {
	Entity *Entity
	Column string
}

// Referrers lists the columns referencing target.
func Referrers(target *Entity) []Referrer {
	var out []Referrer
	for _, e := range registry {
		for _, f := range e.Fields {
			if f.Kind == KindReference && f.References == target.Table {
				out = append(out, Referrer{Entity: e, Column: f.Name})
			}
		}
	}
	return out
}
