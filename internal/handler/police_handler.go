package handler

import (
	"net/http"

	"emergency-response-backend/internal/service"
	"emergency-response-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PoliceHandler serves the police dashboard: the open clearance-request
// queue, acknowledgement and traffic notes.
type PoliceHandler struct {
	policeService *service.PoliceService
}

func NewPoliceHandler(policeService *service.PoliceService) *PoliceHandler {
	return &PoliceHandler{policeService: policeService}
}

// OpenRequests lists clearance requests that are not yet cleared
func (h *PoliceHandler) OpenRequests(c *gin.Context) {
	list, err := h.policeService.ListOpen()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"requests": list, "count": len(list)})
}

// Acknowledge marks a request as seen
func (h *PoliceHandler) Acknowledge(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	req, err := h.policeService.Acknowledge(requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, req)
}

type notesRequest struct {
	TrafficNotes string `json:"traffic_notes" binding:"required"`
}

// UpdateNotes replaces the traffic notes on a request
func (h *PoliceHandler) UpdateNotes(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	pr, err := h.policeService.UpdateNotes(requestID, req.TrafficNotes)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, pr)
}

// Clear closes a request once traffic coordination is done
func (h *PoliceHandler) Clear(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	pr, err := h.policeService.Clear(requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, pr)
}
