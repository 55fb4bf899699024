package classsync

import (
	"classsync-backend/internal/classes"
	"context"
	"time"
)

// Store persists class records keyed by (code, start, end).
type Store interface {
	// Upsert inserts the record or, when one with the same identity exists, updates its
	// status, location and last updated time. It returns the row id.
	Upsert(ctx context.Context, record classes.ClassRecord) (int64, error)
	// FindByIdentity returns ok = false when nothing matches.
	FindByIdentity(ctx context.Context, code string, start, end time.Time) (record classes.ClassRecord, ok bool, err error)
	ListAll(ctx context.Context) ([]classes.ClassRecord, error)
	DeleteAll(ctx context.Context) error
	DeleteByCourseCode(ctx context.Context, code string) (int64, error)
}

type Credentials struct {
	Username string
	Password string
	// Save is set when the user asked for the credentials to be remembered.
	Save bool
}

func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

type Settings interface {
	GetRefreshIntervalHours(ctx context.Context) (int, error)
	SetWebAttendanceRates(ctx context.Context, classRate, campusRate float64) error
	GetWebAttendanceRates(ctx context.Context) (classRate, campusRate float64, err error)
	GetCredentials(ctx context.Context) (Credentials, error)
	SaveCredentials(ctx context.Context, creds Credentials) error
	ClearCredentials(ctx context.Context) error
}

// ScheduleSink receives calendar entries derived from class records.
type ScheduleSink interface {
	CreateEntry(ctx context.Context, entry classes.CalendarEntry) error
}

// Run is one FetchAndSync attempt, successful or not.
type Run struct {
	Id       string
	Started  time.Time
	Finished time.Time
	Records  int
	Source   string
	// Err is the error message of a failed run, empty on success.
	Err string
}

type History interface {
	RecordRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
