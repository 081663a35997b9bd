package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	fleetv1 "fleetHQ/api/fleet/v1"
	"fleetHQ/internal/apperr"
	"fleetHQ/internal/auth"
	"fleetHQ/internal/scheduling"
)

// Request bodies share the gRPC wire types so both transports accept the
// same JSON.
type handlers struct {
	svc *scheduling.Service
}

func caller(c *gin.Context) (auth.Caller, bool) {
	cl, ok := auth.GinCaller(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"kind": "Unauthenticated", "message": "missing caller"}})
	}
	return cl, ok
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, apperr.InvalidRequest("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, apperr.InvalidRequest("invalid request body: %v", err))
		return false
	}
	return true
}

func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.InvalidRequest("%s must be an RFC 3339 timestamp", name)
	}
	return &t, nil
}

// Drones

func (h *handlers) createDrone(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var req fleetv1.CreateDroneRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.CreateDrone(c.Request.Context(), cl, scheduling.CreateDroneInput{
		SerialNumber:    req.SerialNumber,
		Name:            req.Name,
		Model:           req.Model,
		Status:          req.Status,
		BatteryLevel:    req.BatteryLevel,
		MaxFlightTime:   req.MaxFlightTime,
		Location:        req.Location,
		HealthStatus:    req.HealthStatus,
		LastMaintenance: req.LastMaintenance,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *handlers) listDrones(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.svc.ListDrones(c.Request.Context(), cl)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// listAvailableDrones serves GET /api/drones/available?startDateTime=&endDateTime=.
func (h *handlers) listAvailableDrones(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	start, err := queryTime(c, "startDateTime")
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := queryTime(c, "endDateTime")
	if err != nil {
		writeError(c, err)
		return
	}
	list, err := h.svc.ListAvailableDrones(c.Request.Context(), cl, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) getDrone(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	d, err := h.svc.GetDrone(c.Request.Context(), cl, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handlers) updateDrone(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req fleetv1.UpdateDroneRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.UpdateDrone(c.Request.Context(), cl, id, scheduling.DronePatch{
		SerialNumber:    req.SerialNumber,
		Name:            req.Name,
		Model:           req.Model,
		Status:          req.Status,
		BatteryLevel:    req.BatteryLevel,
		MaxFlightTime:   req.MaxFlightTime,
		Location:        req.Location,
		HealthStatus:    req.HealthStatus,
		LastMaintenance: req.LastMaintenance,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handlers) deleteDrone(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteDrone(c.Request.Context(), cl, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fleetv1.DeleteResponse{ID: id, Message: fmt.Sprintf("drone %d deleted", id)})
}

// Missions

func flightInput(p fleetv1.FlightParameters) scheduling.FlightParametersInput {
	return scheduling.FlightParametersInput{Altitude: p.Altitude, Speed: p.Speed, Pattern: p.Pattern, Overlap: p.Overlap}
}

func (h *handlers) createMission(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var req fleetv1.CreateMissionRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.CreateMission(c.Request.Context(), cl, scheduling.CreateMissionInput{
		Name:             req.Name,
		Description:      req.Description,
		DroneID:          req.DroneID,
		SurveyArea:       req.SurveyArea,
		FlightParameters: flightInput(req.FlightParameters),
		Schedule:         req.Schedule,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *handlers) listMissions(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.svc.ListMissions(c.Request.Context(), cl)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) getMission(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	m, err := h.svc.GetMission(c.Request.Context(), cl, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *handlers) updateMission(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req fleetv1.UpdateMissionRequest
	if !bindJSON(c, &req) {
		return
	}
	p := scheduling.MissionPatch{
		Name:        req.Name,
		Description: req.Description,
		DroneID:     req.DroneID,
		Status:      req.Status,
		SurveyArea:  req.SurveyArea,
		Schedule:    req.Schedule,
	}
	if req.FlightParameters != nil {
		fp := flightInput(*req.FlightParameters)
		p.FlightParameters = &fp
	}
	m, err := h.svc.UpdateMission(c.Request.Context(), cl, id, p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *handlers) deleteMission(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteMission(c.Request.Context(), cl, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fleetv1.DeleteResponse{ID: id, Message: fmt.Sprintf("mission %d deleted", id)})
}
