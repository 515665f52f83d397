package service

import (
	"math"
	"sort"
	"sync"
	"time"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/models"
)

// In-memory store fakes. The conditional updates (Claim, AssignAmbulance,
// TransitionStatus, Acknowledge) hold a mutex for the whole check-and-set so
// they race the same way the SQL conditional updates do.

type memHospitalStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Hospital
}

func newMemHospitalStore() *memHospitalStore {
	return &memHospitalStore{nextID: 1, rows: map[uint]*models.Hospital{}}
}

func (s *memHospitalStore) Create(h *models.Hospital) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.nextID
	s.nextID++
	cp := *h
	s.rows[h.ID] = &cp
	return nil
}

func (s *memHospitalStore) GetByID(id uint) (*models.Hospital, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (s *memHospitalStore) GetByUsername(username string) (*models.Hospital, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.rows {
		if h.Username == username {
			cp := *h
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *memHospitalStore) GetAllActive() ([]models.Hospital, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Hospital
	for _, h := range s.rows {
		if h.IsActive {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memHospitalStore) FindWithinRadius(lat, lng, radiusKm float64) ([]models.Hospital, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latDelta := radiusKm / 111.0
	lngDelta := radiusKm / (111.0 * math.Max(0.01, math.Cos(lat*math.Pi/180)))
	var out []models.Hospital
	for _, h := range s.rows {
		if !h.IsActive || h.Latitude == nil || h.Longitude == nil {
			continue
		}
		if math.Abs(*h.Latitude-lat) <= latDelta && math.Abs(*h.Longitude-lng) <= lngDelta {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memHospitalStore) UpdateBedOccupancy(id uint, occupied int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	h.OccupiedBeds = occupied
	return nil
}

func (s *memHospitalStore) TouchLastLogin(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	now := time.Now().UTC()
	h.LastLogin = &now
	return nil
}

func (s *memHospitalStore) SoftDelete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	h.IsActive = false
	return nil
}

type memEmergencyStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Emergency
}

func newMemEmergencyStore() *memEmergencyStore {
	return &memEmergencyStore{nextID: 1, rows: map[uint]*models.Emergency{}}
}

func (s *memEmergencyStore) Create(e *models.Emergency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	cp := *e
	s.rows[e.ID] = &cp
	return nil
}

func (s *memEmergencyStore) GetByID(id uint) (*models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memEmergencyStore) GetByReportCode(code string) (*models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.rows {
		if e.ReportCode == code {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *memEmergencyStore) ListPending() ([]models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Emergency
	for _, e := range s.rows {
		if e.Status == models.StatusPending && e.HospitalID == nil {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memEmergencyStore) ListByHospital(hospitalID uint) ([]models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Emergency
	for _, e := range s.rows {
		if e.HospitalID != nil && *e.HospitalID == hospitalID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memEmergencyStore) Claim(emergencyID uint, h *models.Hospital) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[emergencyID]
	if !ok || e.Status != models.StatusPending || e.HospitalID != nil {
		return false, nil
	}
	id := h.ID
	e.Status = models.StatusAcknowledged
	e.HospitalID = &id
	e.AssignedHospitalName = h.Name
	e.AssignedHospitalLat = h.Latitude
	e.AssignedHospitalLng = h.Longitude
	e.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *memEmergencyStore) AssignAmbulance(emergencyID, hospitalID uint, a *models.Ambulance) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[emergencyID]
	if !ok || e.Status != models.StatusAcknowledged || e.HospitalID == nil || *e.HospitalID != hospitalID {
		return false, nil
	}
	id := a.ID
	e.Status = models.StatusDispatched
	e.AssignedAmbulanceID = &id
	e.AssignedAmbulanceNumber = a.VehicleNumber
	e.DriverName = a.DriverName
	e.DriverPhone = a.DriverPhone
	e.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *memEmergencyStore) TransitionStatus(emergencyID uint, from []models.EmergencyStatus, to models.EmergencyStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[emergencyID]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if e.Status == f {
			e.Status = to
			e.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (s *memEmergencyStore) ListActiveByAmbulance(ambulanceID uint) ([]models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Emergency
	for _, e := range s.rows {
		if e.AssignedAmbulanceID != nil && *e.AssignedAmbulanceID == ambulanceID && e.Status.Active() {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memEmergencyStore) CountActiveByAmbulance(ambulanceID uint) (int64, error) {
	list, _ := s.ListActiveByAmbulance(ambulanceID)
	return int64(len(list)), nil
}

func (s *memEmergencyStore) ListStalePending(cutoff time.Time) ([]models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Emergency
	for _, e := range s.rows {
		if e.Status == models.StatusPending && e.HospitalID == nil && e.UpdatedAt.Before(cutoff) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memEmergencyStore) Touch(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.UpdatedAt = time.Now().UTC()
	return nil
}

type memAmbulanceStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Ambulance
}

func newMemAmbulanceStore() *memAmbulanceStore {
	return &memAmbulanceStore{nextID: 1, rows: map[uint]*models.Ambulance{}}
}

func (s *memAmbulanceStore) Create(a *models.Ambulance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.HospitalID == a.HospitalID && row.VehicleNumber == a.VehicleNumber {
			return &apperrors.ConflictError{Resource: "ambulance " + a.VehicleNumber}
		}
	}
	a.ID = s.nextID
	s.nextID++
	cp := *a
	s.rows[a.ID] = &cp
	return nil
}

func (s *memAmbulanceStore) GetByID(id uint) (*models.Ambulance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memAmbulanceStore) ListByHospital(hospitalID uint) ([]models.AmbulanceWithMissions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AmbulanceWithMissions
	for _, a := range s.rows {
		if a.HospitalID == hospitalID {
			out = append(out, models.AmbulanceWithMissions{Ambulance: *a})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memAmbulanceStore) SetAvailability(id uint, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	a.IsAvailable = available
	return nil
}

func (s *memAmbulanceStore) UpdateLocation(id uint, lat, lng float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	now := time.Now().UTC()
	a.Latitude = &lat
	a.Longitude = &lng
	a.LastUpdated = &now
	return nil
}

func (s *memAmbulanceStore) ListUnavailable() ([]models.Ambulance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ambulance
	for _, a := range s.rows {
		if !a.IsAvailable {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memAmbulanceStore) CountAvailableByHospital(hospitalIDs []uint) (map[uint]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[uint]int{}
	for _, a := range s.rows {
		if a.IsAvailable {
			counts[a.HospitalID]++
		}
	}
	out := map[uint]int{}
	for _, id := range hospitalIDs {
		out[id] = counts[id]
	}
	return out, nil
}

type memPoliceStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.PoliceRequest
}

func newMemPoliceStore() *memPoliceStore {
	return &memPoliceStore{nextID: 1, rows: map[uint]*models.PoliceRequest{}}
}

func (s *memPoliceStore) Create(req *models.PoliceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.EmergencyID == req.EmergencyID {
			return &apperrors.ConflictError{Resource: "police request for this emergency"}
		}
	}
	req.ID = s.nextID
	s.nextID++
	req.RequestedAt = time.Now().UTC()
	cp := *req
	s.rows[req.ID] = &cp
	return nil
}

func (s *memPoliceStore) GetByID(id uint) (*models.PoliceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memPoliceStore) ListOpen() ([]models.PoliceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PoliceRequest
	for _, r := range s.rows {
		if r.Status != models.PoliceRequestCleared {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memPoliceStore) Acknowledge(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok || r.Status != models.PoliceRequestPending {
		return false, nil
	}
	now := time.Now().UTC()
	r.Status = models.PoliceRequestAcknowledged
	r.AcknowledgedAt = &now
	return true, nil
}

func (s *memPoliceStore) UpdateNotes(id uint, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	r.TrafficNotes = notes
	return nil
}

func (s *memPoliceStore) SetStatus(id uint, status models.PoliceRequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	r.Status = status
	return nil
}

type memAuditStore struct {
	mu      sync.Mutex
	actions []string
}

func (s *memAuditStore) CreateAuditLog(userID *uint, action string, details string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

type publishedEvent struct {
	Topic   string
	Type    string
	Payload interface{}
}

type memNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *memNotifier) Publish(topic, eventType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{Topic: topic, Type: eventType, Payload: payload})
}

func (n *memNotifier) topicsOf(eventType string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e.Topic)
		}
	}
	return out
}
