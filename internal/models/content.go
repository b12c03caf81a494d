package models

import "time"

// ProgrammeLevel is the academic level of a programme.
type ProgrammeLevel string

const (
	LevelUndergraduate ProgrammeLevel = "Undergraduate"
	LevelPostgraduate  ProgrammeLevel = "Postgraduate"
)

// JoinResolver is implemented by records that carry a flattened joined
// column which must be reshaped after scanning.
type JoinResolver interface {
	ResolveJoins()
}

// DepartmentRef is the embedded department subset returned with
// programmes, staff and research areas.
type DepartmentRef struct {
	Name string `json:"name"`
}

func departmentRef(name *string) *DepartmentRef {
	if name == nil {
		return nil
	}
	return &DepartmentRef{Name: *name}
}

// Department is an academic department of the faculty.
type Department struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Description      string    `db:"description" json:"description"`
	HeadOfDepartment string    `db:"head_of_department" json:"head_of_department"`
	Slug             string    `db:"slug" json:"slug"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Programme is a degree programme, optionally owned by a department.
type Programme struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Level          ProgrammeLevel `db:"level" json:"level"`
	DepartmentID   *string        `db:"department_id" json:"department_id"`
	Duration       string         `db:"duration" json:"duration"`
	Description    string         `db:"description" json:"description"`
	Slug           string         `db:"slug" json:"slug"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	DepartmentName *string        `db:"department_name" json:"-"`
	Departments    *DepartmentRef `db:"-" json:"departments,omitempty"`
}

// ResolveJoins implements JoinResolver.
func (p *Programme) ResolveJoins() { p.Departments = departmentRef(p.DepartmentName) }

// Staff is a member of academic or administrative staff.
type Staff struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Position       string         `db:"position" json:"position"`
	DepartmentID   *string        `db:"department_id" json:"department_id"`
	Email          string         `db:"email" json:"email"`
	ProfileImage   string         `db:"profile_image" json:"profile_image"`
	Bio            string         `db:"bio" json:"bio"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	DepartmentName *string        `db:"department_name" json:"-"`
	Departments    *DepartmentRef `db:"-" json:"departments,omitempty"`
}

// ResolveJoins implements JoinResolver.
func (s *Staff) ResolveJoins() { s.Departments = departmentRef(s.DepartmentName) }

// News is a dated article shown on the home page and news listing.
type News struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	Image       string    `db:"image" json:"image"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ResearchArea is a research theme, optionally led by a department.
type ResearchArea struct {
	ID             string         `db:"id" json:"id"`
	Title          string         `db:"title" json:"title"`
	Description    string         `db:"description" json:"description"`
	DepartmentID   *string        `db:"department_id" json:"department_id"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	DepartmentName *string        `db:"department_name" json:"-"`
	Departments    *DepartmentRef `db:"-" json:"departments,omitempty"`
}

// ResolveJoins implements JoinResolver.
func (r *ResearchArea) ResolveJoins() { r.Departments = departmentRef(r.DepartmentName) }

// ContentCounts summarises row counts for the admin dashboard.
type ContentCounts struct {
	Departments int `json:"departments"`
	Programmes  int `json:"programmes"`
	Staff       int `json:"staff"`
	News        int `json:"news"`
	Research    int `json:"research"`
}

// HomePage bundles the data rendered on the public home page.
type HomePage struct {
	News []News `json:"news"`
}
