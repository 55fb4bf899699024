package classes

import (
	"fmt"
	"strings"
	"time"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusPlanned
	StatusInProgress
	StatusUpcoming
	StatusCompleted
	StatusAbsent
)

var statusNames = map[Status]string{
	StatusUnknown:    "unknown",
	StatusPlanned:    "planned",
	StatusInProgress: "in_progress",
	StatusUpcoming:   "upcoming",
	StatusCompleted:  "completed",
	StatusAbsent:     "absent",
}

func (s Status) String() string {
	name, ok := statusNames[s]
	if !ok {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return name
}

// ParseStatus is the inverse of Status.String, unrecognized names are StatusUnknown.
func ParseStatus(name string) Status {
	name = strings.ToLower(strings.TrimSpace(name))
	for status, n := range statusNames {
		if n == name {
			return status
		}
	}
	return StatusUnknown
}

// Attendance is true for statuses that come from a confirmed attendance signal.
func (s Status) Attendance() bool {
	return s == StatusCompleted || s == StatusAbsent
}

// ClassRecord is a single concrete meeting of a course.
type ClassRecord struct {
	CourseCode  string
	CourseName  string
	StartTime   time.Time
	EndTime     time.Time
	Location    string
	Status      Status
	LastUpdated time.Time
}

// Identity is the key a record is deduplicated and upserted by, the portal
// exposes no stable id of its own.
type Identity struct {
	CourseCode string
	Start      int64
	End        int64
	Location   string
}

func (r ClassRecord) Identity() Identity {
	return Identity{
		CourseCode: r.CourseCode,
		Start:      r.StartTime.Unix(),
		End:        r.EndTime.Unix(),
		Location:   r.Location,
	}
}

// Valid checks the invariants every record handed out of the scraper must hold.
func (r ClassRecord) Valid() error {
	if r.CourseCode == "" {
		return fmt.Errorf("empty course code")
	}
	if !r.StartTime.Before(r.EndTime) {
		return fmt.Errorf(
			"start time %s is not before end time %s",
			r.StartTime.Format(time.RFC3339),
			r.EndTime.Format(time.RFC3339),
		)
	}
	return nil
}

// Title is the "code - name" label of a record, the code alone if both are the same.
func (r ClassRecord) Title() string {
	if r.CourseName == "" || r.CourseName == r.CourseCode {
		return r.CourseCode
	}
	return fmt.Sprintf("%s - %s", r.CourseCode, r.CourseName)
}
