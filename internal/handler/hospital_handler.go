package handler

import (
	"net/http"
	"strconv"

	"emergency-response-backend/internal/middleware"
	"emergency-response-backend/internal/models"
	"emergency-response-backend/internal/service"
	"emergency-response-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// HospitalHandler serves the hospital dashboard: the pending feed, claim and
// dispatch actions, fleet and bed management, and admin onboarding.
type HospitalHandler struct {
	hospitalService  *service.HospitalService
	emergencyService *service.EmergencyService
	dispatchService  *service.DispatchService
	ambulanceService *service.AmbulanceService
	policeService    *service.PoliceService
}

func NewHospitalHandler(
	hospitalService *service.HospitalService,
	emergencyService *service.EmergencyService,
	dispatchService *service.DispatchService,
	ambulanceService *service.AmbulanceService,
	policeService *service.PoliceService,
) *HospitalHandler {
	return &HospitalHandler{
		hospitalService:  hospitalService,
		emergencyService: emergencyService,
		dispatchService:  dispatchService,
		ambulanceService: ambulanceService,
		policeService:    policeService,
	}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func callerHospital(c *gin.Context) (uint, bool) {
	hospitalID, ok := middleware.HospitalID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusForbidden, "Account is not linked to a hospital")
		return 0, false
	}
	return hospitalID, true
}

func callerUserID(c *gin.Context) *uint {
	if v, ok := c.Get(middleware.CtxUserID); ok {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}

// PendingFeed lists unclaimed emergencies
func (h *HospitalHandler) PendingFeed(c *gin.Context) {
	list, err := h.emergencyService.ListPending()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"emergencies": list, "count": len(list)})
}

// ClaimedEmergencies lists the emergencies this hospital has claimed
func (h *HospitalHandler) ClaimedEmergencies(c *gin.Context) {
	hospitalID, ok := callerHospital(c)
	if !ok {
		return
	}
	list, err := h.emergencyService.ListByHospital(hospitalID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"emergencies": list, "count": len(list)})
}

// Claim acknowledges a pending emergency for this hospital. A 409 means
// another hospital won the race; the body names the current holder and the
// dashboard must refresh before retrying.
func (h *HospitalHandler) Claim(c *gin.Context) {
	emergencyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	hospitalID, ok := callerHospital(c)
	if !ok {
		return
	}

	e, err := h.dispatchService.Claim(emergencyID, hospitalID, callerUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, e)
}

type dispatchRequest struct {
	AmbulanceID uint `json:"ambulance_id" binding:"required"`
}

// Dispatch assigns one of this hospital's ambulances to a claimed emergency
func (h *HospitalHandler) Dispatch(c *gin.Context) {
	emergencyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	hospitalID, ok := callerHospital(c)
	if !ok {
		return
	}

	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	e, err := h.dispatchService.DispatchAmbulance(emergencyID, hospitalID, req.AmbulanceID, callerUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, e)
}

type statusRequest struct {
	Status models.EmergencyStatus `json:"status" binding:"required"`
}

// UpdateStatus applies a guarded lifecycle transition from the dashboard
func (h *HospitalHandler) UpdateStatus(c *gin.Context) {
	emergencyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	e, err := h.dispatchService.UpdateStatus(emergencyID, req.Status, callerUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, e)
}

// Fleet lists this hospital's ambulances with active mission counts
func (h *HospitalHandler) Fleet(c *gin.Context) {
	hospitalID, ok := callerHospital(c)
	if !ok {
		return
	}
	fleet, err := h.ambulanceService.Fleet(hospitalID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"ambulances": fleet, "count": len(fleet)})
}

// RegisterAmbulance adds a vehicle to this hospital's fleet
func (h *HospitalHandler) RegisterAmbulance(c *gin.Context) {
	hospitalID, ok := callerHospital(c)
	if !ok {
		return
	}

	var input service.RegisterAmbulanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	a, err := h.ambulanceService.Register(hospitalID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, a)
}

type bedsRequest struct {
	OccupiedBeds *int `json:"occupied_beds" binding:"required"`
}

// UpdateBeds sets the hospital's occupied bed count
func (h *HospitalHandler) UpdateBeds(c *gin.Context) {
	hospitalID, ok := callerHospital(c)
	if !ok {
		return
	}

	var req bedsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	hospital, err := h.hospitalService.UpdateBeds(hospitalID, *req.OccupiedBeds)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, hospital)
}

type clearanceRequest struct {
	Notes string `json:"traffic_notes"`
}

// RequestClearance files a police traffic-coordination request
func (h *HospitalHandler) RequestClearance(c *gin.Context) {
	emergencyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	hospitalID, ok := callerHospital(c)
	if !ok {
		return
	}

	var req clearanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	pr, err := h.policeService.RequestClearance(emergencyID, hospitalID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, pr)
}

// RegisterHospital onboards a new hospital (admin only)
func (h *HospitalHandler) RegisterHospital(c *gin.Context) {
	var input service.RegisterHospitalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	hospital, err := h.hospitalService.Register(input, callerUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, hospital)
}

// ListHospitals returns all active hospitals (admin only)
func (h *HospitalHandler) ListHospitals(c *gin.Context) {
	hospitals, err := h.hospitalService.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"hospitals": hospitals, "count": len(hospitals)})
}

// DeactivateHospital soft deletes a hospital (admin only)
func (h *HospitalHandler) DeactivateHospital(c *gin.Context) {
	hospitalID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.hospitalService.Deactivate(hospitalID, callerUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, "Hospital deactivated")
}
