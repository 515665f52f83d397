package service

import (
	"fmt"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/models"
	"emergency-response-backend/internal/realtime"

	"github.com/rs/zerolog"
)

// DispatchService owns the emergency lifecycle:
//
//	pending -> acknowledged -> dispatched -> in_progress -> resolved
//	pending/acknowledged -> cancelled
//
// Claim exclusivity is enforced by conditional updates in the store, never
// by read-then-write. Ambulance availability is advisory bookkeeping: one
// vehicle may serve several active emergencies at once.
type DispatchService struct {
	emergencyStore EmergencyStore
	ambulanceStore AmbulanceStore
	hospitalStore  HospitalStore
	auditStore     AuditStore
	notifier       Notifier
	log            zerolog.Logger
}

func NewDispatchService(
	emergencyStore EmergencyStore,
	ambulanceStore AmbulanceStore,
	hospitalStore HospitalStore,
	auditStore AuditStore,
	notifier Notifier,
	log zerolog.Logger,
) *DispatchService {
	return &DispatchService{
		emergencyStore: emergencyStore,
		ambulanceStore: ambulanceStore,
		hospitalStore:  hospitalStore,
		auditStore:     auditStore,
		notifier:       notifier,
		log:            log,
	}
}

// Claim performs the pending -> acknowledged transition for a hospital.
// If another hospital got there first the ConflictError names the winner;
// the caller must refresh its view before retrying.
func (s *DispatchService) Claim(emergencyID, hospitalID uint, userID *uint) (*models.Emergency, error) {
	hospital, err := s.hospitalStore.GetByID(hospitalID)
	if err != nil {
		return nil, err
	}

	ok, err := s.emergencyStore.Claim(emergencyID, hospital)
	if err != nil {
		return nil, fmt.Errorf("claiming emergency %d: %w", emergencyID, err)
	}
	if !ok {
		// Lost the conditional update; re-read to find out why.
		e, err := s.emergencyStore.GetByID(emergencyID)
		if err != nil {
			return nil, err
		}
		if e.HospitalID != nil {
			return nil, &apperrors.ConflictError{
				Resource:      fmt.Sprintf("emergency %d", emergencyID),
				CurrentHolder: e.AssignedHospitalName,
			}
		}
		return nil, apperrors.NewValidation("status",
			fmt.Sprintf("emergency is %s and can no longer be claimed", e.Status))
	}

	e, err := s.emergencyStore.GetByID(emergencyID)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Hospital %s claimed emergency %s", hospital.Name, e.ReportCode)
	_ = s.auditStore.CreateAuditLog(userID, "emergency_claim", details)

	s.notifier.Publish(realtime.EmergencyTopic(e.ReportCode), "emergency.acknowledged", e)
	s.log.Info().
		Str("report_code", e.ReportCode).
		Uint("hospital_id", hospitalID).
		Msg("emergency claimed")

	return e, nil
}

// DispatchAmbulance performs acknowledged -> dispatched, copying the vehicle
// snapshot onto the emergency and flagging the vehicle unavailable. The flag
// is a hint for dispatch UIs, not a reservation: dispatching an already
// "unavailable" ambulance to a second emergency succeeds.
func (s *DispatchService) DispatchAmbulance(emergencyID, hospitalID, ambulanceID uint, userID *uint) (*models.Emergency, error) {
	ambulance, err := s.ambulanceStore.GetByID(ambulanceID)
	if err != nil {
		return nil, err
	}
	if ambulance.HospitalID != hospitalID {
		return nil, apperrors.NewValidation("ambulance_id", "ambulance belongs to a different hospital")
	}

	ok, err := s.emergencyStore.AssignAmbulance(emergencyID, hospitalID, ambulance)
	if err != nil {
		return nil, fmt.Errorf("dispatching ambulance %d: %w", ambulanceID, err)
	}
	if !ok {
		e, err := s.emergencyStore.GetByID(emergencyID)
		if err != nil {
			return nil, err
		}
		if e.HospitalID == nil || *e.HospitalID != hospitalID {
			return nil, &apperrors.ConflictError{
				Resource:      fmt.Sprintf("emergency %d", emergencyID),
				CurrentHolder: e.AssignedHospitalName,
			}
		}
		return nil, apperrors.NewValidation("status",
			fmt.Sprintf("emergency is %s, only acknowledged emergencies can be dispatched", e.Status))
	}

	if err := s.ambulanceStore.SetAvailability(ambulanceID, false); err != nil {
		// Advisory flag only; the dispatch itself already committed.
		s.log.Warn().Err(err).Uint("ambulance_id", ambulanceID).Msg("failed to flag ambulance unavailable")
	}

	e, err := s.emergencyStore.GetByID(emergencyID)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Ambulance %s dispatched to emergency %s", ambulance.VehicleNumber, e.ReportCode)
	_ = s.auditStore.CreateAuditLog(userID, "ambulance_dispatch", details)

	s.notifier.Publish(realtime.AmbulanceTopic(ambulanceID), "mission.assigned", e)
	s.notifier.Publish(realtime.EmergencyTopic(e.ReportCode), "emergency.dispatched", e)

	return e, nil
}

// ConfirmPickup performs dispatched -> in_progress. The only guard is that
// the caller's vehicle number matches the assignment.
func (s *DispatchService) ConfirmPickup(emergencyID uint, vehicleNumber string) (*models.Emergency, error) {
	e, err := s.emergencyStore.GetByID(emergencyID)
	if err != nil {
		return nil, err
	}
	if e.AssignedAmbulanceNumber == "" || e.AssignedAmbulanceNumber != vehicleNumber {
		return nil, apperrors.NewValidation("vehicle_number", "emergency is not assigned to this vehicle")
	}

	ok, err := s.emergencyStore.TransitionStatus(emergencyID,
		[]models.EmergencyStatus{models.StatusDispatched}, models.StatusInProgress)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewValidation("status",
			fmt.Sprintf("emergency is %s, pickup requires dispatched", e.Status))
	}

	e, err = s.emergencyStore.GetByID(emergencyID)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(realtime.EmergencyTopic(e.ReportCode), "emergency.in_progress", e)
	return e, nil
}

// Resolve performs dispatched/in_progress -> resolved. When this was the
// vehicle's last active mission its availability flag flips back to true;
// with other missions still active the flag is left untouched.
func (s *DispatchService) Resolve(emergencyID uint, userID *uint) (*models.Emergency, error) {
	ok, err := s.emergencyStore.TransitionStatus(emergencyID,
		[]models.EmergencyStatus{models.StatusDispatched, models.StatusInProgress}, models.StatusResolved)
	if err != nil {
		return nil, err
	}
	if !ok {
		e, err := s.emergencyStore.GetByID(emergencyID)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewValidation("status",
			fmt.Sprintf("emergency is %s and cannot be resolved", e.Status))
	}

	e, err := s.emergencyStore.GetByID(emergencyID)
	if err != nil {
		return nil, err
	}

	if e.AssignedAmbulanceID != nil {
		s.releaseAmbulanceIfIdle(*e.AssignedAmbulanceID)
	}

	details := fmt.Sprintf("Emergency %s resolved", e.ReportCode)
	_ = s.auditStore.CreateAuditLog(userID, "emergency_resolve", details)

	s.notifier.Publish(realtime.EmergencyTopic(e.ReportCode), "emergency.resolved", e)
	return e, nil
}

// Cancel performs pending/acknowledged -> cancelled.
func (s *DispatchService) Cancel(emergencyID uint, userID *uint) (*models.Emergency, error) {
	ok, err := s.emergencyStore.TransitionStatus(emergencyID,
		[]models.EmergencyStatus{models.StatusPending, models.StatusAcknowledged}, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		e, err := s.emergencyStore.GetByID(emergencyID)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewValidation("status",
			fmt.Sprintf("emergency is %s and cannot be cancelled", e.Status))
	}

	e, err := s.emergencyStore.GetByID(emergencyID)
	if err != nil {
		return nil, err
	}

	_ = s.auditStore.CreateAuditLog(userID, "emergency_cancel",
		fmt.Sprintf("Emergency %s cancelled", e.ReportCode))
	s.notifier.Publish(realtime.EmergencyTopic(e.ReportCode), "emergency.cancelled", e)
	return e, nil
}

// UpdateStatus is the generic dashboard transition entry point. Transitions
// with side effects route through their dedicated methods so availability
// bookkeeping cannot be skipped.
func (s *DispatchService) UpdateStatus(emergencyID uint, to models.EmergencyStatus, userID *uint) (*models.Emergency, error) {
	if !models.ValidStatus(to) {
		return nil, apperrors.NewValidation("status", "unknown status "+string(to))
	}

	switch to {
	case models.StatusInProgress:
		e, err := s.emergencyStore.GetByID(emergencyID)
		if err != nil {
			return nil, err
		}
		return s.ConfirmPickup(emergencyID, e.AssignedAmbulanceNumber)
	case models.StatusResolved:
		return s.Resolve(emergencyID, userID)
	case models.StatusCancelled:
		return s.Cancel(emergencyID, userID)
	default:
		// pending is the creation state; acknowledged and dispatched have
		// their own guarded entry points.
		return nil, apperrors.NewValidation("status",
			fmt.Sprintf("cannot transition to %s directly", to))
	}
}

// ActiveMissions lists the dispatched/in_progress emergencies assigned to a
// vehicle. More than one entry is a supported state, not an anomaly.
func (s *DispatchService) ActiveMissions(ambulanceID uint) ([]models.Emergency, error) {
	if _, err := s.ambulanceStore.GetByID(ambulanceID); err != nil {
		return nil, err
	}
	return s.emergencyStore.ListActiveByAmbulance(ambulanceID)
}

// releaseAmbulanceIfIdle flips is_available back on when the vehicle has no
// remaining active missions.
func (s *DispatchService) releaseAmbulanceIfIdle(ambulanceID uint) {
	count, err := s.emergencyStore.CountActiveByAmbulance(ambulanceID)
	if err != nil {
		s.log.Warn().Err(err).Uint("ambulance_id", ambulanceID).Msg("failed to count active missions")
		return
	}
	if count > 0 {
		return
	}
	if err := s.ambulanceStore.SetAvailability(ambulanceID, true); err != nil {
		s.log.Warn().Err(err).Uint("ambulance_id", ambulanceID).Msg("failed to release ambulance")
	}
}
