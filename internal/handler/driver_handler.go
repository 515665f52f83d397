package handler

import (
	"net/http"

	"emergency-response-backend/internal/middleware"
	"emergency-response-backend/internal/service"
	"emergency-response-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DriverHandler serves the ambulance driver app: mission list, pickup and
// completion, GPS reporting.
type DriverHandler struct {
	dispatchService  *service.DispatchService
	ambulanceService *service.AmbulanceService
}

func NewDriverHandler(dispatchService *service.DispatchService, ambulanceService *service.AmbulanceService) *DriverHandler {
	return &DriverHandler{
		dispatchService:  dispatchService,
		ambulanceService: ambulanceService,
	}
}

func callerAmbulance(c *gin.Context) (uint, bool) {
	ambulanceID, ok := middleware.AmbulanceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusForbidden, "Account is not linked to an ambulance")
		return 0, false
	}
	return ambulanceID, true
}

// Missions lists the driver's active missions; more than one is normal
func (h *DriverHandler) Missions(c *gin.Context) {
	ambulanceID, ok := callerAmbulance(c)
	if !ok {
		return
	}

	missions, err := h.dispatchService.ActiveMissions(ambulanceID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"missions": missions, "count": len(missions)})
}

// Pickup confirms the patient is on board
func (h *DriverHandler) Pickup(c *gin.Context) {
	emergencyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ambulanceID, ok := callerAmbulance(c)
	if !ok {
		return
	}

	a, err := h.ambulanceService.Get(ambulanceID)
	if err != nil {
		respondError(c, err)
		return
	}

	e, err := h.dispatchService.ConfirmPickup(emergencyID, a.VehicleNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, e)
}

// Complete marks a mission resolved
func (h *DriverHandler) Complete(c *gin.Context) {
	emergencyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	e, err := h.dispatchService.Resolve(emergencyID, callerUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, e)
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ReportLocation records a GPS fix; persistence is best-effort
func (h *DriverHandler) ReportLocation(c *gin.Context) {
	ambulanceID, ok := callerAmbulance(c)
	if !ok {
		return
	}

	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.ambulanceService.ReportLocation(ambulanceID, req.Latitude, req.Longitude); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, "Location recorded")
}
