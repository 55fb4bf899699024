package db

import (
	"classsync-backend/internal/classes"
	"classsync-backend/internal/classsync"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func fromClass(c Class) classes.ClassRecord {
	return classes.ClassRecord{
		CourseCode:  c.CourseCode,
		CourseName:  c.CourseName,
		StartTime:   time.Unix(c.StartTime, 0),
		EndTime:     time.Unix(c.EndTime, 0),
		Location:    c.Location,
		Status:      classes.ParseStatus(c.Status),
		LastUpdated: time.Unix(c.LastUpdated, 0),
	}
}

// Store is the sql implementation of classsync.Store.
type Store struct {
	qry    *Queries
	makeTx MakeTx
}

var _ classsync.Store = Store{}

func NewStore(data *sql.DB) Store {
	return Store{
		qry:    New(data),
		makeTx: NewMakeTx(data),
	}
}

func (s Store) Upsert(ctx context.Context, record classes.ClassRecord) (int64, error) {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return 0, err
	}
	defer discard()

	existing, err := tx.FindClassByIdentity(ctx, FindClassByIdentityParams{
		CourseCode: record.CourseCode,
		StartTime:  record.StartTime.Unix(),
		EndTime:    record.EndTime.Unix(),
	})

	var id int64
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id, err = tx.InsertClass(ctx, InsertClassParams{
			CourseCode:  record.CourseCode,
			CourseName:  record.CourseName,
			StartTime:   record.StartTime.Unix(),
			EndTime:     record.EndTime.Unix(),
			Location:    record.Location,
			Status:      record.Status.String(),
			LastUpdated: record.LastUpdated.Unix(),
		})
		if err != nil {
			return 0, fmt.Errorf("insert class: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("find class: %w", err)
	default:
		id = existing.ID
		err = tx.UpdateClass(ctx, UpdateClassParams{
			Location:    record.Location,
			Status:      record.Status.String(),
			LastUpdated: record.LastUpdated.Unix(),
			ID:          existing.ID,
		})
		if err != nil {
			return 0, fmt.Errorf("update class: %w", err)
		}
	}

	return id, commit()
}

func (s Store) FindByIdentity(ctx context.Context, code string, start, end time.Time) (classes.ClassRecord, bool, error) {
	c, err := s.qry.FindClassByIdentity(ctx, FindClassByIdentityParams{
		CourseCode: code,
		StartTime:  start.Unix(),
		EndTime:    end.Unix(),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return classes.ClassRecord{}, false, nil
	}
	if err != nil {
		return classes.ClassRecord{}, false, err
	}
	return fromClass(c), true, nil
}

func (s Store) ListAll(ctx context.Context) ([]classes.ClassRecord, error) {
	rows, err := s.qry.ListClasses(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]classes.ClassRecord, len(rows))
	for i, c := range rows {
		records[i] = fromClass(c)
	}
	return records, nil
}

func (s Store) DeleteAll(ctx context.Context) error {
	return s.qry.DeleteAllClasses(ctx)
}

func (s Store) DeleteByCourseCode(ctx context.Context, code string) (int64, error) {
	return s.qry.DeleteClassesByCourseCode(ctx, code)
}
