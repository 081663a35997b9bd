package grpcserver

import (
	"context"
	"fmt"

	fleetv1 "fleetHQ/api/fleet/v1"
	"fleetHQ/internal/auth"
	"fleetHQ/internal/scheduling"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FleetServer implements FleetService RPCs on top of the scheduling service.
type FleetServer struct {
	Svc *scheduling.Service
}

var _ fleetv1.FleetServiceServer = (*FleetServer)(nil)

func requireID(id int64, what string) error {
	if id <= 0 {
		return status.Errorf(codes.InvalidArgument, "%s id is required", what)
	}
	return nil
}

func (s *FleetServer) CreateDrone(ctx context.Context, req *fleetv1.CreateDroneRequest) (*fleetv1.DroneResponse, error) {
	c, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.Svc.CreateDrone(ctx, c, scheduling.CreateDroneInput{
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
		return nil, toStatus(err)
	}
	return &fleetv1.DroneResponse{Drone: d}, nil
}

func (s *FleetServer) ListDrones(ctx context.Context, _ *fleetv1.ListDronesRequest) (*fleetv1.ListDronesResponse, error) {
	c, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.Svc.ListDrones(ctx, c)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.ListDronesResponse{Drones: list}, nil
}

// ListAvailableDrones returns the caller's drones free in the requested window.
func (s *FleetServer) ListAvailableDrones(ctx context.Context, req *fleetv1.ListAvailableDronesRequest) (*fleetv1.ListDronesResponse, error) {
	c, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.Svc.ListAvailableDrones(ctx, c, req.StartDateTime, req.EndDateTime)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.ListDronesResponse{Drones: list}, nil
}

func (s *FleetServer) GetDrone(ctx context.Context, req *fleetv1.GetDroneRequest) (*fleetv1.DroneResponse, error) {
	c, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.ID, "drone"); err != nil {
		return nil, err
	}
	d, err := s.Svc.GetDrone(ctx, c, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.DroneResponse{Drone: d}, nil
}

func (s *FleetServer) UpdateDrone(ctx context.Context, req *fleetv1.UpdateDroneRequest) (*fleetv1.DroneResponse, error) {
	c, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.ID, "drone"); err != nil {
		return nil, err
	}
	d, err := s.Svc.UpdateDrone(ctx, c, req.ID, scheduling.DronePatch{
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
		return nil, toStatus(err)
	}
	return &fleetv1.DroneResponse{Drone: d}, nil
}

func (s *FleetServer) DeleteDrone(ctx context.Context, req *fleetv1.DeleteRequest) (*fleetv1.DeleteResponse, error) {
	c, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.ID, "drone"); err != nil {
		return nil, err
	}
	if err := s.Svc.DeleteDrone(ctx, c, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.DeleteResponse{ID: req.ID, Message: fmt.Sprintf("drone %d deleted", req.ID)}, nil
}

func flightInput(p fleetv1.FlightParameters) scheduling.FlightParametersInput {
	return scheduling.FlightParametersInput{Altitude: p.Altitude, Speed: p.Speed, Pattern: p.Pattern, Overlap: p.Overlap}
}

func (s *FleetServer) CreateMission(ctx context.Context, req *fleetv1.CreateMissionRequest) (*fleetv1.MissionResponse, error) {
	c, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.Svc.CreateMission(ctx, c, scheduling.CreateMissionInput{
		Name:             req.Name,
		Description:      req.Description,
		DroneID:          req.DroneID,
		SurveyArea:       req.SurveyArea,
		FlightParameters: flightInput(req.FlightParameters),
		Schedule:         req.Schedule,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.MissionResponse{Mission: m}, nil
}

func (s *FleetServer) ListMissions(ctx context.Context, _ *fleetv1.ListMissionsRequest) (*fleetv1.ListMissionsResponse, error) {
	c, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.Svc.ListMissions(ctx, c)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.ListMissionsResponse{Missions: list}, nil
}

func (s *FleetServer) GetMission(ctx context.Context, req *fleetv1.GetMissionRequest) (*fleetv1.MissionResponse, error) {
	c, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.ID, "mission"); err != nil {
		return nil, err
	}
	m, err := s.Svc.GetMission(ctx, c, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.MissionResponse{Mission: m}, nil
}

// UpdateMission patches a mission; status changes drive the drone cascade.
func (s *FleetServer) UpdateMission(ctx context.Context, req *fleetv1.UpdateMissionRequest) (*fleetv1.MissionResponse, error) {
	c, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.ID, "mission"); err != nil {
		return nil, err
	}
	m, err := s.Svc.UpdateMission(ctx, c, req.ID, missionPatch(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.MissionResponse{Mission: m}, nil
}

func missionPatch(req *fleetv1.UpdateMissionRequest) scheduling.MissionPatch {
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
	return p
}

func (s *FleetServer) DeleteMission(ctx context.Context, req *fleetv1.DeleteRequest) (*fleetv1.DeleteResponse, error) {
	c, err := auth.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.ID, "mission"); err != nil {
		return nil, err
	}
	if err := s.Svc.DeleteMission(ctx, c, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.DeleteResponse{ID: req.ID, Message: fmt.Sprintf("mission %d deleted", req.ID)}, nil
}
