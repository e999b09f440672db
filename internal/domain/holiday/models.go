package holiday

import (
	"strings"
	"time"

	"hrms/internal/domain/employee"
)

type ScopeType string

const (
	ScopeGlobal     ScopeType = "global"
	ScopeDepartment ScopeType = "department"
	ScopeLocation   ScopeType = "location"
)

func (s ScopeType) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeDepartment, ScopeLocation:
		return true
	}
	return false
}

// Holiday spans StartDate..EndDate inclusive.
type Holiday struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	ScopeType    ScopeType `json:"scopeType"`
	DepartmentID string    `json:"departmentId,omitempty"`
	Location     string    `json:"location,omitempty"`
}

// Subject is the department and location a holiday is matched against.
type Subject struct {
	DepartmentID string
	Location     string
}

func SubjectOf(emp employee.Employee) Subject {
	return Subject{DepartmentID: emp.DepartmentID, Location: emp.Location}
}

// Covers reports whether date falls inside the holiday, compared by calendar day.
func (h Holiday) Covers(date time.Time) bool {
	d := Day(date)
	return !d.Before(Day(h.StartDate)) && !d.After(Day(h.EndDate))
}

// AppliesTo reports whether the holiday scope includes subject. Department and
// location scopes need a non-empty, exactly equal value.
func (h Holiday) AppliesTo(subject Subject) bool {
	switch h.ScopeType {
	case ScopeGlobal:
		return true
	case ScopeDepartment:
		return h.DepartmentID != "" && h.DepartmentID == subject.DepartmentID
	case ScopeLocation:
		return h.Location != "" && h.Location == subject.Location
	}
	return false
}

func (h Holiday) Validate() []string {
	var bad []string
	if strings.TrimSpace(h.Name) == "" {
		bad = append(bad, "name")
	}
	if h.StartDate.IsZero() {
		bad = append(bad, "startDate")
	}
	if h.EndDate.IsZero() || Day(h.EndDate).Before(Day(h.StartDate)) {
		bad = append(bad, "endDate")
	}
	switch h.ScopeType {
	case ScopeDepartment:
		if h.DepartmentID == "" {
			bad = append(bad, "departmentId")
		}
	case ScopeLocation:
		if strings.TrimSpace(h.Location) == "" {
			bad = append(bad, "location")
		}
	case ScopeGlobal:
	default:
		bad = append(bad, "scopeType")
	}
	return bad
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
