package db

import (
	"classsync-backend/internal/classes"
	"classsync-backend/internal/classsync"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) *sql.DB {
	data, err := Config{File: ":memory:"}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is a separate database
	data.SetMaxOpenConns(1)
	t.Cleanup(func() { data.Close() })

	err = Migrate(context.Background(), data)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func record(code string, day, hour int, location string, status classes.Status) classes.ClassRecord {
	start := time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
	return classes.ClassRecord{
		CourseCode:  code,
		CourseName:  code + " name",
		StartTime:   start,
		EndTime:     start.Add(90 * time.Minute),
		Location:    location,
		Status:      status,
		LastUpdated: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewStore(setup(t))

	first := record("CP3406-LA", 26, 13, "Building 301", classes.StatusPlanned)
	id, err := store.Upsert(ctx, first)
	require.NoError(t, err)

	updated := first
	updated.CourseName = "ignored"
	updated.Location = "Building 302"
	updated.Status = classes.StatusCompleted
	updated.LastUpdated = first.LastUpdated.Add(time.Hour)
	sameId, err := store.Upsert(ctx, updated)
	require.NoError(t, err)
	require.Equal(t, id, sameId)

	found, ok, err := store.FindByIdentity(ctx, first.CourseCode, first.StartTime, first.EndTime)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "CP3406-LA name", found.CourseName)
	require.Equal(t, "Building 302", found.Location)
	require.Equal(t, classes.StatusCompleted, found.Status)
	require.True(t, updated.LastUpdated.Equal(found.LastUpdated))
	require.True(t, first.StartTime.Equal(found.StartTime))

	_, ok, err = store.FindByIdentity(ctx, "CP9999", first.StartTime, first.EndTime)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(setup(t))

	for _, r := range []classes.ClassRecord{
		record("CP3406-LA", 27, 13, "A", classes.StatusPlanned),
		record("CP3406-LA", 26, 13, "A", classes.StatusPlanned),
		record("CP2408-PR", 26, 9, "B", classes.StatusAbsent),
	} {
		_, err := store.Upsert(ctx, r)
		require.NoError(t, err)
	}

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "CP2408-PR", all[0].CourseCode)
	require.Equal(t, 26, all[1].StartTime.UTC().Day())

	deleted, err := store.DeleteByCourseCode(ctx, "CP3406-LA")
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	all, err = store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, store.DeleteAll(ctx))
	all, err = store.ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	settings := NewSettings(setup(t))

	hours, err := settings.GetRefreshIntervalHours(ctx)
	require.NoError(t, err)
	require.Equal(t, DefaultRefreshIntervalHours, hours)
	require.Error(t, settings.SetRefreshIntervalHours(ctx, 0))
	require.NoError(t, settings.SetRefreshIntervalHours(ctx, 12))
	hours, err = settings.GetRefreshIntervalHours(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, hours)

	classRate, campusRate, err := settings.GetWebAttendanceRates(ctx)
	require.NoError(t, err)
	require.Zero(t, classRate)
	require.Zero(t, campusRate)
	require.NoError(t, settings.SetWebAttendanceRates(ctx, 0.85, 0.9))
	classRate, campusRate, err = settings.GetWebAttendanceRates(ctx)
	require.NoError(t, err)
	require.Equal(t, 0.85, classRate)
	require.Equal(t, 0.9, campusRate)

	require.NoError(t, settings.SaveCredentials(ctx, classsync.Credentials{Username: "jc123456", Password: "secret"}))
	creds, err := settings.GetCredentials(ctx)
	require.NoError(t, err)
	require.Equal(t, classsync.Credentials{Username: "jc123456"}, creds)

	require.NoError(t, settings.SaveCredentials(ctx, classsync.Credentials{Username: "jc123456", Password: "secret", Save: true}))
	creds, err = settings.GetCredentials(ctx)
	require.NoError(t, err)
	require.Equal(t, classsync.Credentials{Username: "jc123456", Password: "secret", Save: true}, creds)

	require.NoError(t, settings.ClearCredentials(ctx))
	creds, err = settings.GetCredentials(ctx)
	require.NoError(t, err)
	require.False(t, creds.Complete())
}

func TestScheduleSinkAndHistory(t *testing.T) {
	ctx := context.Background()
	data := setup(t)
	sink := NewScheduleSink(data)
	history := NewHistory(data)

	entry := record("CP3406-LA", 26, 13, "Building 301", classes.StatusAbsent).CalendarEntry()
	require.NoError(t, sink.CreateEntry(ctx, entry))
	require.NoError(t, sink.CreateEntry(ctx, entry))

	entries, err := sink.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "CP3406-LA - CP3406-LA name", entries[0].Title)
	require.Equal(t, classes.PriorityHigh, entries[0].Priority)
	require.Equal(t, classes.CategoryStudy, entries[0].Category)

	started := time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2"} {
		err := history.RecordRun(ctx, classsync.Run{
			Id:       id,
			Started:  started.Add(time.Duration(i) * time.Hour),
			Finished: started.Add(time.Duration(i)*time.Hour + time.Second),
			Records:  i,
		})
		require.NoError(t, err)
	}

	runs, err := history.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "run-2", runs[0].Id)
	require.Equal(t, 1, runs[0].Records)
}
