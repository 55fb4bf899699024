package db

import (
	"classsync-backend/internal/classes"
	"classsync-backend/internal/classsync"
	"context"
	"database/sql"
	"time"
)

// ScheduleSink keeps published calendar entries in the schedule_entries table, publishing the
// same entry twice updates it in place.
type ScheduleSink struct {
	qry *Queries
}

var _ classsync.ScheduleSink = ScheduleSink{}

func NewScheduleSink(data *sql.DB) ScheduleSink {
	return ScheduleSink{qry: New(data)}
}

func (s ScheduleSink) CreateEntry(ctx context.Context, entry classes.CalendarEntry) error {
	return s.qry.InsertScheduleEntry(ctx, InsertScheduleEntryParams{
		Title:     entry.Title,
		Category:  entry.Category,
		Priority:  entry.Priority.String(),
		StartTime: entry.Start.Unix(),
		EndTime:   entry.End.Unix(),
		Location:  entry.Location,
	})
}

func (s ScheduleSink) ListEntries(ctx context.Context) ([]classes.CalendarEntry, error) {
	rows, err := s.qry.ListScheduleEntries(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]classes.CalendarEntry, len(rows))
	for i, r := range rows {
		entries[i] = classes.CalendarEntry{
			Title:    r.Title,
			Category: r.Category,
			Priority: classes.ParsePriority(r.Priority),
			Start:    time.Unix(r.StartTime, 0),
			End:      time.Unix(r.EndTime, 0),
			Location: r.Location,
		}
	}
	return entries, nil
}

// History is the sync_runs implementation of classsync.History.
type History struct {
	qry *Queries
}

var _ classsync.History = History{}

func NewHistory(data *sql.DB) History {
	return History{qry: New(data)}
}

func (h History) RecordRun(ctx context.Context, run classsync.Run) error {
	return h.qry.InsertSyncRun(ctx, SyncRun{
		ID:       run.Id,
		Started:  run.Started.UnixMilli(),
		Finished: run.Finished.UnixMilli(),
		Records:  int64(run.Records),
		Source:   run.Source,
		Error:    run.Err,
	})
}

func (h History) ListRuns(ctx context.Context, limit int) ([]classsync.Run, error) {
	rows, err := h.qry.ListSyncRuns(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	runs := make([]classsync.Run, len(rows))
	for i, r := range rows {
		runs[i] = classsync.Run{
			Id:       r.ID,
			Started:  time.UnixMilli(r.Started),
			Finished: time.UnixMilli(r.Finished),
			Records:  int(r.Records),
			Source:   r.Source,
			Err:      r.Error,
		}
	}
	return runs, nil
}
