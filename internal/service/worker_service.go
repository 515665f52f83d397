package service

import (
	"context"
	"time"

	"emergency-response-backend/internal/config"

	"github.com/rs/zerolog"
)

// WorkerService is the background reconciliation loop. Each tick it
// re-announces unclaimed emergencies that sat pending too long and repairs
// ambulance availability flags left stale by crashed requests.
type WorkerService struct {
	emergencyStore EmergencyStore
	ambulanceStore AmbulanceStore
	emergencies    *EmergencyService
	cfg            config.DispatchConfig
	log            zerolog.Logger
}

func NewWorkerService(
	emergencyStore EmergencyStore,
	ambulanceStore AmbulanceStore,
	emergencies *EmergencyService,
	cfg config.DispatchConfig,
	log zerolog.Logger,
) *WorkerService {
	return &WorkerService{
		emergencyStore: emergencyStore,
		ambulanceStore: ambulanceStore,
		emergencies:    emergencies,
		cfg:            cfg,
		log:            log,
	}
}

// Start runs the worker until the context is cancelled.
func (w *WorkerService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.WorkerInterval)
	defer ticker.Stop()

	w.log.Info().Dur("interval", w.cfg.WorkerInterval).Msg("background worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("background worker stopped")
			return
		case <-ticker.C:
			w.renotifyStalePending()
			w.reconcileAvailability()
		}
	}
}

// renotifyStalePending re-publishes pending emergencies no hospital claimed
// within the configured window.
func (w *WorkerService) renotifyStalePending() {
	cutoff := time.Now().UTC().Add(-w.cfg.RenotifyAfter)
	stale, err := w.emergencyStore.ListStalePending(cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to list stale pending emergencies")
		return
	}

	for i := range stale {
		e := &stale[i]
		notified := w.emergencies.NotifyNearest(e)
		if err := w.emergencyStore.Touch(e.ID); err != nil {
			w.log.Warn().Err(err).Str("report_code", e.ReportCode).Msg("failed to mark emergency re-notified")
		}
		w.log.Info().
			Str("report_code", e.ReportCode).
			Int("notified", len(notified)).
			Msg("re-announced unclaimed emergency")
	}
}

// reconcileAvailability releases vehicles flagged unavailable that no longer
// have active missions.
func (w *WorkerService) reconcileAvailability() {
	vehicles, err := w.ambulanceStore.ListUnavailable()
	if err != nil {
		w.log.Error().Err(err).Msg("failed to list unavailable ambulances")
		return
	}

	for _, a := range vehicles {
		count, err := w.emergencyStore.CountActiveByAmbulance(a.ID)
		if err != nil {
			w.log.Warn().Err(err).Uint("ambulance_id", a.ID).Msg("failed to count active missions")
			continue
		}
		if count > 0 {
			continue
		}
		if err := w.ambulanceStore.SetAvailability(a.ID, true); err != nil {
			w.log.Warn().Err(err).Uint("ambulance_id", a.ID).Msg("failed to release ambulance")
			continue
		}
		w.log.Info().
			Uint("ambulance_id", a.ID).
			Str("vehicle_number", a.VehicleNumber).
			Msg("released idle ambulance")
	}
}
