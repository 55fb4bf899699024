package db

import (
	"context"
	"database/sql"
	"errors"
)

const insertClass = `insert into classes(
    course_code, course_name, start_time, end_time, location, status, last_updated
) values (?, ?, ?, ?, ?, ?, ?)`

type InsertClassParams struct {
	CourseCode  string
	CourseName  string
	StartTime   int64
	EndTime     int64
	Location    string
	Status      string
	LastUpdated int64
}

func (q *Queries) InsertClass(ctx context.Context, arg InsertClassParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertClass,
		arg.CourseCode,
		arg.CourseName,
		arg.StartTime,
		arg.EndTime,
		arg.Location,
		arg.Status,
		arg.LastUpdated,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateClass = `update classes
set location = ?, status = ?, last_updated = ?
where id = ?`

type UpdateClassParams struct {
	Location    string
	Status      string
	LastUpdated int64
	ID          int64
}

func (q *Queries) UpdateClass(ctx context.Context, arg UpdateClassParams) error {
	_, err := q.db.ExecContext(ctx, updateClass,
		arg.Location,
		arg.Status,
		arg.LastUpdated,
		arg.ID,
	)
	return err
}

const selectClass = `select id, course_code, course_name, start_time, end_time, location, status, last_updated from classes`

func scanClass(row interface{ Scan(...any) error }) (Class, error) {
	var c Class
	err := row.Scan(
		&c.ID,
		&c.CourseCode,
		&c.CourseName,
		&c.StartTime,
		&c.EndTime,
		&c.Location,
		&c.Status,
		&c.LastUpdated,
	)
	return c, err
}

const findClassByIdentity = selectClass + `
where course_code = ? and start_time = ? and end_time = ?`

type FindClassByIdentityParams struct {
	CourseCode string
	StartTime  int64
	EndTime    int64
}

// FindClassByIdentity returns sql.ErrNoRows when there is no match.
func (q *Queries) FindClassByIdentity(ctx context.Context, arg FindClassByIdentityParams) (Class, error) {
	row := q.db.QueryRowContext(ctx, findClassByIdentity, arg.CourseCode, arg.StartTime, arg.EndTime)
	return scanClass(row)
}

const listClasses = selectClass + `
order by start_time, course_code`

func (q *Queries) ListClasses(ctx context.Context) ([]Class, error) {
	rows, err := q.db.QueryContext(ctx, listClasses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAllClasses = `delete from classes`

func (q *Queries) DeleteAllClasses(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllClasses)
	return err
}

const deleteClassesByCourseCode = `delete from classes where course_code = ?`

func (q *Queries) DeleteClassesByCourseCode(ctx context.Context, courseCode string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteClassesByCourseCode, courseCode)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getSetting = `select value from settings where key = ?`

// GetSetting returns ok = false when the key was never set.
func (q *Queries) GetSetting(ctx context.Context, key string) (value string, ok bool, err error) {
	err = q.db.QueryRowContext(ctx, getSetting, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

const setSetting = `insert into settings(key, value) values (?, ?)
on conflict(key) do update set value = excluded.value`

func (q *Queries) SetSetting(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, setSetting, key, value)
	return err
}

const deleteSetting = `delete from settings where key = ?`

func (q *Queries) DeleteSetting(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteSetting, key)
	return err
}

const insertScheduleEntry = `insert into schedule_entries(
    title, category, priority, start_time, end_time, location
) values (?, ?, ?, ?, ?, ?)
on conflict(title, start_time, end_time) do update set
    category = excluded.category,
    priority = excluded.priority,
    location = excluded.location`

type InsertScheduleEntryParams struct {
	Title     string
	Category  string
	Priority  string
	StartTime int64
	EndTime   int64
	Location  string
}

func (q *Queries) InsertScheduleEntry(ctx context.Context, arg InsertScheduleEntryParams) error {
	_, err := q.db.ExecContext(ctx, insertScheduleEntry,
		arg.Title,
		arg.Category,
		arg.Priority,
		arg.StartTime,
		arg.EndTime,
		arg.Location,
	)
	return err
}

const listScheduleEntries = `select id, title, category, priority, start_time, end_time, location
from schedule_entries order by start_time, title`

func (q *Queries) ListScheduleEntries(ctx context.Context) ([]ScheduleEntry, error) {
	rows, err := q.db.QueryContext(ctx, listScheduleEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ScheduleEntry
	for rows.Next() {
		var e ScheduleEntry
		if err := rows.Scan(
			&e.ID,
			&e.Title,
			&e.Category,
			&e.Priority,
			&e.StartTime,
			&e.EndTime,
			&e.Location,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertSyncRun = `insert into sync_runs(id, started, finished, records, source, error)
values (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertSyncRun(ctx context.Context, arg SyncRun) error {
	_, err := q.db.ExecContext(ctx, insertSyncRun,
		arg.ID,
		arg.Started,
		arg.Finished,
		arg.Records,
		arg.Source,
		arg.Error,
	)
	return err
}

const listSyncRuns = `select id, started, finished, records, source, error
from sync_runs order by started desc limit ?`

func (q *Queries) ListSyncRuns(ctx context.Context, limit int64) ([]SyncRun, error) {
	rows, err := q.db.QueryContext(ctx, listSyncRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SyncRun
	for rows.Next() {
		var r SyncRun
		if err := rows.Scan(
			&r.ID,
			&r.Started,
			&r.Finished,
			&r.Records,
			&r.Source,
			&r.Error,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
