package handler

import (
	"net/http"

	"emergency-response-backend/internal/service"
	"emergency-response-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// EmergencyHandler serves the public patient-facing intake endpoints.
type EmergencyHandler struct {
	emergencyService *service.EmergencyService
	rankingService   *service.RankingService
	ambulanceService *service.AmbulanceService
}

func NewEmergencyHandler(emergencyService *service.EmergencyService, rankingService *service.RankingService, ambulanceService *service.AmbulanceService) *EmergencyHandler {
	return &EmergencyHandler{
		emergencyService: emergencyService,
		rankingService:   rankingService,
		ambulanceService: ambulanceService,
	}
}

// Report creates a new SOS and fans notifications out to nearby hospitals
func (h *EmergencyHandler) Report(c *gin.Context) {
	var input service.ReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.emergencyService.Report(input)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

// Get returns the current state of a report for patient polling
func (h *EmergencyHandler) Get(c *gin.Context) {
	e, err := h.emergencyService.GetByReportCode(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, e)
}

// Track returns the tracking view of a report: the emergency plus the
// assigned vehicle's last known position. Websocket subscribers get the same
// data pushed; this endpoint is the polling fallback.
func (h *EmergencyHandler) Track(c *gin.Context) {
	e, err := h.emergencyService.GetByReportCode(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	view := gin.H{"emergency": e}
	if e.AssignedAmbulanceID != nil {
		if a, err := h.ambulanceService.Get(*e.AssignedAmbulanceID); err == nil {
			view["ambulance_location"] = gin.H{
				"latitude":     a.Latitude,
				"longitude":    a.Longitude,
				"last_updated": a.LastUpdated,
			}
		}
	}

	utils.SuccessResponse(c, view)
}

type rankRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// RankHospitals scores nearby hospitals for a patient location
func (h *EmergencyHandler) RankHospitals(c *gin.Context) {
	var req rankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ranked, err := h.rankingService.RankHospitals(req.Latitude, req.Longitude)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"hospitals": ranked,
		"count":     len(ranked),
	})
}
