package classsync

import (
	"classsync-backend/internal/components/chrono"
	"classsync-backend/internal/components/telemetry"
	"classsync-backend/internal/scrapers/portal"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

const report_refresher_tick = "refresher.tick"

// Refresher runs FetchAndSync on a cron schedule. A tick is skipped while the previous one
// is still running.
type Refresher struct {
	service *Service
	cron    chrono.CronAPI
	tel     telemetry.API

	running atomic.Bool
	mutex   sync.Mutex
	stop    func()
}

func NewRefresher(service *Service, cron chrono.CronAPI, tel telemetry.API) *Refresher {
	return &Refresher{
		service: service,
		cron:    cron,
		tel:     telemetry.NewScopedAPI("refresher", tel),
	}
}

// Start schedules the refresh every refresh interval, ctx is used for every tick.
func (r *Refresher) Start(ctx context.Context) error {
	interval, err := r.service.RefreshInterval(ctx)
	if err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.stop != nil {
		r.stop()
	}

	stop, err := r.cron.Cron(fmt.Sprintf("@every %s", interval), func() {
		_, err := r.Tick(ctx)
		if err != nil {
			r.tel.ReportWarning(report_refresher_tick, err)
		}
	})
	if err != nil {
		return err
	}
	r.stop = stop
	return nil
}

func (r *Refresher) Stop() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.stop != nil {
		r.stop()
		r.stop = nil
	}
}

// ErrTickSkipped is returned by Tick when a previous tick has not finished yet.
var ErrTickSkipped = errors.New("previous refresh still running")

// Tick runs one refresh. An expired session is dropped and the fetch is retried once,
// which logs in again with the saved credentials.
func (r *Refresher) Tick(ctx context.Context) (Result, error) {
	if !r.running.CompareAndSwap(false, true) {
		r.tel.ReportDebug("skipping tick, previous refresh still running")
		return Result{}, ErrTickSkipped
	}
	defer r.running.Store(false)

	result, err := r.service.FetchAndSync(ctx, false)
	if errors.Is(err, portal.ErrSessionExpired) {
		r.tel.ReportDebug("session expired, retrying once")
		result, err = r.service.FetchAndSync(ctx, true)
	}
	if err != nil {
		return Result{}, err
	}
	r.tel.ReportDebug("refreshed", len(result.Records), result.Cached)
	return result, nil
}
