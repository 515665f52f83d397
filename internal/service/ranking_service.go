package service

import (
	"fmt"
	"sort"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/config"
	"emergency-response-backend/internal/geo"
	"emergency-response-backend/internal/scoring"
)

// AvailabilitySummary is the capacity snapshot attached to each ranked
// hospital.
type AvailabilitySummary struct {
	FreeBeds            int `json:"free_beds"`
	TotalBeds           int `json:"total_beds"`
	AvailableAmbulances int `json:"available_ambulances"`
}

// RankedHospital is one entry of a ranking response.
type RankedHospital struct {
	HospitalID      uint                `json:"hospital_id"`
	Name            string              `json:"name"`
	Phone           string              `json:"phone,omitempty"`
	Address         string              `json:"address,omitempty"`
	Latitude        *float64            `json:"latitude"`
	Longitude       *float64            `json:"longitude"`
	Specializations []string            `json:"specializations"`
	DistanceKm      float64             `json:"distance_km"`
	CompositeScore  int                 `json:"composite_score"`
	Availability    AvailabilitySummary `json:"availability_summary"`
}

type RankingService struct {
	hospitalStore  HospitalStore
	ambulanceStore AmbulanceStore
	weights        scoring.Weights
	radiusKm       float64
	maxResults     int
}

func NewRankingService(hospitalStore HospitalStore, ambulanceStore AmbulanceStore, cfg config.DispatchConfig) *RankingService {
	return &RankingService{
		hospitalStore:  hospitalStore,
		ambulanceStore: ambulanceStore,
		weights: scoring.Weights{
			Distance:       cfg.DistanceWeight,
			Load:           cfg.LoadWeight,
			Specialization: cfg.SpecializationWeight,
		},
		radiusKm:   cfg.SearchRadiusKm,
		maxResults: cfg.MaxResults,
	}
}

// RankHospitals scores emergency-capable hospitals around the patient and
// returns them best first. An empty result is not an error; missing
// coordinates are.
func (s *RankingService) RankHospitals(lat, lng *float64) ([]RankedHospital, error) {
	if lat == nil || lng == nil {
		return nil, apperrors.NewValidation("location", "patient coordinates are required")
	}

	candidates, err := s.hospitalStore.FindWithinRadius(*lat, *lng, s.radiusKm)
	if err != nil {
		return nil, fmt.Errorf("loading candidate hospitals: %w", err)
	}

	ranked := scoring.Rank(geo.NewPoint(*lat, *lng), candidates, s.weights, s.maxResults)
	if len(ranked) == 0 {
		return []RankedHospital{}, nil
	}

	ids := make([]uint, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.Hospital.ID)
	}
	ambulances, err := s.ambulanceStore.CountAvailableByHospital(ids)
	if err != nil {
		return nil, fmt.Errorf("loading ambulance availability: %w", err)
	}

	out := make([]RankedHospital, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, RankedHospital{
			HospitalID:      r.Hospital.ID,
			Name:            r.Hospital.Name,
			Phone:           r.Hospital.Phone,
			Address:         r.Hospital.Address,
			Latitude:        r.Hospital.Latitude,
			Longitude:       r.Hospital.Longitude,
			Specializations: r.Hospital.SpecializationList(),
			DistanceKm:      r.DistanceKm,
			CompositeScore:  r.Score,
			Availability: AvailabilitySummary{
				FreeBeds:            r.Hospital.FreeBeds(),
				TotalBeds:           r.Hospital.TotalBeds,
				AvailableAmbulances: ambulances[r.Hospital.ID],
			},
		})
	}
	return out, nil
}

// NearestEligible returns up to n emergency-capable hospitals closest to the
// patient, used for the new-emergency notification fan-out. Unlike
// RankHospitals this orders by raw distance, unknown distances last.
func (s *RankingService) NearestEligible(lat, lng *float64, n int) ([]RankedHospital, error) {
	ranked, err := s.RankHospitals(lat, lng)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}
