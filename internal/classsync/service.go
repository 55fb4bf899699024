// Package classsync ties the portal client and the schedule extractor to the local store.
// All portal traffic for one account goes through a single Service, it serializes the whole
// login and fetch sequence since interleaved requests would corrupt the session.
package classsync

import (
	"classsync-backend/internal/classes"
	"classsync-backend/internal/components/assert"
	"classsync-backend/internal/components/chrono"
	"classsync-backend/internal/components/telemetry"
	"classsync-backend/internal/scrapers/portal"
	"classsync-backend/internal/scrapers/timetable"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("classsync/classsync")

const (
	report_service_fetch   = "service.fetch-and-sync"
	report_service_merge   = "service.merge"
	report_service_rates   = "service.rates"
	report_service_history = "service.history"
	report_service_login   = "service.login"
)

type Params struct {
	Client    *portal.Client
	Store     Store
	Settings  Settings
	Sink      ScheduleSink
	History   History
	Clock     chrono.API
	Telemetry telemetry.API
	// CacheTTL is how long FetchAndSync(false) may serve a previous result, zero disables
	// the cache.
	CacheTTL time.Duration
}

type Service struct {
	client    *portal.Client
	extractor timetable.Extractor
	store     Store
	settings  Settings
	sink      ScheduleSink
	history   History
	clock     chrono.API
	tel       telemetry.API
	cache     *expirable.LRU[string, Result]

	mutex    sync.Mutex
	username string
}

func NewService(p Params) *Service {
	assert.NotNil(p.Client)
	assert.NotNil(p.Store)
	assert.NotNil(p.Settings)
	assert.NotNil(p.Clock)
	assert.NotNil(p.Telemetry)

	s := &Service{
		client:    p.Client,
		extractor: timetable.NewExtractor(p.Clock, p.Telemetry, p.Client),
		store:     p.Store,
		settings:  p.Settings,
		sink:      p.Sink,
		history:   p.History,
		clock:     p.Clock,
		tel:       telemetry.NewScopedAPI("classsync", p.Telemetry),
	}
	if p.CacheTTL > 0 {
		s.cache = expirable.NewLRU[string, Result](8, nil, p.CacheTTL)
	}
	return s
}

// Result is the outcome of one successful FetchAndSync.
type Result struct {
	Records []classes.ClassRecord
	// ClassRate and CampusRate are the attendance rates shown by the portal, 0 when absent.
	ClassRate  float64
	CampusRate float64
	// NoClasses is set when the portal explicitly states there is nothing scheduled.
	NoClasses bool
	Source    string
	FetchedAt time.Time
	// Cached is set when the result was served without contacting the portal.
	Cached bool
}

// Login authenticates against the portal and stores the credentials, the password is
// only kept when creds.Save is set.
func (s *Service) Login(ctx context.Context, creds Credentials) error {
	ctx, span := tracer.Start(ctx, "service:Login")
	defer span.End()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.client.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.username = creds.Username

	err = s.settings.SaveCredentials(ctx, creds)
	if err != nil {
		s.tel.ReportBroken(report_service_login, fmt.Errorf("save credentials: %w", err))
		return err
	}
	return nil
}

// Logout drops the session and any cached result, forget also removes the stored credentials.
func (s *Service) Logout(ctx context.Context, forget bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.client.Logout()
	s.username = ""
	s.purgeCache()
	if forget {
		return s.settings.ClearCredentials(ctx)
	}
	return nil
}

func (s *Service) purgeCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// ensureSession logs in with the saved credentials when there is no session yet and returns
// the account the session belongs to.
func (s *Service) ensureSession(ctx context.Context) (string, error) {
	if s.client.Authenticated() {
		return s.username, nil
	}

	creds, err := s.settings.GetCredentials(ctx)
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}
	if !creds.Complete() {
		return "", portal.NotAuthenticated("no session and no saved credentials")
	}

	err = s.client.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return "", err
	}
	s.username = creds.Username
	return creds.Username, nil
}

// FetchAndSync fetches the schedule and merges it into the store. Unless force is set, a
// result younger than the cache ttl is returned as is.
func (s *Service) FetchAndSync(ctx context.Context, force bool) (Result, error) {
	ctx, span := tracer.Start(ctx, "service:FetchAndSync")
	defer span.End()
	span.SetAttributes(attribute.Bool("force", force))

	s.mutex.Lock()
	defer s.mutex.Unlock()

	started := s.clock.Now()
	result, err := s.fetchAndSync(ctx, force)
	if err == nil && result.Cached {
		return result, nil
	}

	s.recordRun(ctx, started, result, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportWarning(report_service_fetch, err)
		return Result{}, err
	}

	span.SetAttributes(attribute.Int("records", len(result.Records)))
	return result, nil
}

func (s *Service) fetchAndSync(ctx context.Context, force bool) (Result, error) {
	account, err := s.ensureSession(ctx)
	if err != nil {
		return Result{}, err
	}

	if !force && s.cache != nil {
		cached, ok := s.cache.Get(account)
		if ok {
			cached.Cached = true
			cached.Records = slices.Clone(cached.Records)
			return cached, nil
		}
	}

	page, err := s.client.FetchMain(ctx)
	if err != nil {
		return Result{}, err
	}

	extracted := s.extractor.ExtractPage(ctx, page)
	if len(extracted.Records) == 0 && !extracted.NoClasses && portal.HasPasswordField(page.Doc) {
		s.client.Logout()
		s.purgeCache()
		return Result{}, portal.SessionExpired("the portal asked for a password again")
	}

	result := Result{
		Records:   extracted.Records,
		NoClasses: extracted.NoClasses,
		Source:    extracted.Source,
		FetchedAt: s.clock.Now(),
	}

	rates := timetable.ExtractAttendanceRates(page.Doc)
	if rates.Found {
		result.ClassRate = rates.Class
		result.CampusRate = rates.Campus
		err = s.settings.SetWebAttendanceRates(ctx, rates.Class, rates.Campus)
		if err != nil {
			s.tel.ReportBroken(report_service_rates, err)
			return Result{}, fmt.Errorf("save attendance rates: %w", err)
		}
	}

	for i, record := range result.Records {
		merged, err := s.merge(ctx, record)
		if err != nil {
			s.tel.ReportBroken(report_service_merge, err, record.CourseCode)
			return Result{}, fmt.Errorf("merge %s: %w", record.Title(), err)
		}
		result.Records[i] = merged
	}

	if s.cache != nil {
		cached := result
		cached.Records = slices.Clone(result.Records)
		s.cache.Add(account, cached)
	}
	s.tel.ReportCount(report_service_fetch, int64(len(result.Records)))
	return result, nil
}

// merge upserts a record, a confirmed attendance status already in the store is never
// replaced by a weaker one.
func (s *Service) merge(ctx context.Context, record classes.ClassRecord) (classes.ClassRecord, error) {
	existing, ok, err := s.store.FindByIdentity(ctx, record.CourseCode, record.StartTime, record.EndTime)
	if err != nil {
		return classes.ClassRecord{}, err
	}
	if ok && !classes.Stronger(record.Status, existing.Status) {
		record.Status = existing.Status
	}
	_, err = s.store.Upsert(ctx, record)
	if err != nil {
		return classes.ClassRecord{}, err
	}
	return record, nil
}

func (s *Service) recordRun(ctx context.Context, started time.Time, result Result, runErr error) {
	if s.history == nil {
		return
	}
	run := Run{
		Id:       uuid.NewString(),
		Started:  started,
		Finished: s.clock.Now(),
		Records:  len(result.Records),
		Source:   result.Source,
	}
	if runErr != nil {
		run.Err = runErr.Error()
	}
	err := s.history.RecordRun(ctx, run)
	if err != nil {
		s.tel.ReportBroken(report_service_history, err)
	}
}

func (s *Service) Records(ctx context.Context) ([]classes.ClassRecord, error) {
	return s.store.ListAll(ctx)
}

// Statistics is computed from the stored records and the last attendance rates seen on the portal.
func (s *Service) Statistics(ctx context.Context) (classes.Statistics, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return classes.Statistics{}, err
	}
	classRate, campusRate, err := s.settings.GetWebAttendanceRates(ctx)
	if err != nil {
		return classes.Statistics{}, err
	}
	return classes.ComputeStatistics(records, classRate, campusRate), nil
}

func (s *Service) ClearAll(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.purgeCache()
	return s.store.DeleteAll(ctx)
}

func (s *Service) PurgeCourse(ctx context.Context, code string) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.purgeCache()
	return s.store.DeleteByCourseCode(ctx, code)
}

// PublishSchedule hands every stored record starting at or after from to the schedule sink.
func (s *Service) PublishSchedule(ctx context.Context, from time.Time) (int, error) {
	if s.sink == nil {
		return 0, fmt.Errorf("no schedule sink configured")
	}
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, r := range records {
		if r.StartTime.Before(from) {
			continue
		}
		err := s.sink.CreateEntry(ctx, r.CalendarEntry())
		if err != nil {
			return published, fmt.Errorf("publish %s: %w", r.Title(), err)
		}
		published++
	}
	return published, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]Run, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.ListRuns(ctx, limit)
}

// RefreshInterval is the configured interval between automatic syncs.
func (s *Service) RefreshInterval(ctx context.Context) (time.Duration, error) {
	hours, err := s.settings.GetRefreshIntervalHours(ctx)
	if err != nil {
		return 0, err
	}
	if hours <= 0 {
		return 0, fmt.Errorf("invalid refresh interval %d", hours)
	}
	return time.Duration(hours) * time.Hour, nil
}
