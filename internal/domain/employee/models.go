package employee

import (
	"strings"
	"time"
)

type Employee struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId,omitempty"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	DepartmentID  string    `json:"departmentId,omitempty"`
	Location      string    `json:"location,omitempty"`
	DateOfJoining time.Time `json:"dateOfJoining"`
	AccountActive bool      `json:"accountActive"`
	PFOptOut      bool      `json:"pfOptOut"`
	ESICOptOut    bool      `json:"esicOptOut"`
	PTaxOptOut    bool      `json:"ptaxOptOut"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Statutory holds the per-employee deduction opt-outs.
type Statutory struct {
	PFOptOut   bool `json:"pfOptOut"`
	ESICOptOut bool `json:"esicOptOut"`
	PTaxOptOut bool `json:"ptaxOptOut"`
}

type NewEmployee struct {
	UserID        string    `json:"userId"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	DepartmentID  string    `json:"departmentId"`
	Location      string    `json:"location"`
	DateOfJoining time.Time `json:"dateOfJoining"`
	Statutory
}

// Validate returns the offending field names; empty means valid.
func (n NewEmployee) Validate() []string {
	var bad []string
	if strings.TrimSpace(n.FirstName) == "" {
		bad = append(bad, "firstName")
	}
	if strings.TrimSpace(n.LastName) == "" {
		bad = append(bad, "lastName")
	}
	if !strings.Contains(n.Email, "@") {
		bad = append(bad, "email")
	}
	if n.DateOfJoining.IsZero() {
		bad = append(bad, "dateOfJoining")
	}
	return bad
}
