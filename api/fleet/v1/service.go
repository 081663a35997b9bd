package fleetv1

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "fleethq.v1.FleetService"

// FleetServiceServer is the server API for FleetService.
type FleetServiceServer interface {
	CreateDrone(context.Context, *CreateDroneRequest) (*DroneResponse, error)
	ListDrones(context.Context, *ListDronesRequest) (*ListDronesResponse, error)
	ListAvailableDrones(context.Context, *ListAvailableDronesRequest) (*ListDronesResponse, error)
	GetDrone(context.Context, *GetDroneRequest) (*DroneResponse, error)
	UpdateDrone(context.Context, *UpdateDroneRequest) (*DroneResponse, error)
	DeleteDrone(context.Context, *DeleteRequest) (*DeleteResponse, error)

	CreateMission(context.Context, *CreateMissionRequest) (*MissionResponse, error)
	ListMissions(context.Context, *ListMissionsRequest) (*ListMissionsResponse, error)
	GetMission(context.Context, *GetMissionRequest) (*MissionResponse, error)
	UpdateMission(context.Context, *UpdateMissionRequest) (*MissionResponse, error)
	DeleteMission(context.Context, *DeleteRequest) (*DeleteResponse, error)
}

// FullMethod returns the "/service/method" path of an RPC.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary[Req, Resp any](name string, call func(FleetServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(FleetServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// FleetService_ServiceDesc is the grpc.ServiceDesc for FleetService.
var FleetService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FleetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateDrone", FleetServiceServer.CreateDrone),
		unary("ListDrones", FleetServiceServer.ListDrones),
		unary("ListAvailableDrones", FleetServiceServer.ListAvailableDrones),
		unary("GetDrone", FleetServiceServer.GetDrone),
		unary("UpdateDrone", FleetServiceServer.UpdateDrone),
		unary("DeleteDrone", FleetServiceServer.DeleteDrone),
		unary("CreateMission", FleetServiceServer.CreateMission),
		unary("ListMissions", FleetServiceServer.ListMissions),
		unary("GetMission", FleetServiceServer.GetMission),
		unary("UpdateMission", FleetServiceServer.UpdateMission),
		unary("DeleteMission", FleetServiceServer.DeleteMission),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fleet/v1/fleet.proto",
}

// RegisterFleetServiceServer registers srv on s.
func RegisterFleetServiceServer(s grpc.ServiceRegistrar, srv FleetServiceServer) {
	s.RegisterService(&FleetService_ServiceDesc, srv)
}

// FleetServiceClient is the client API for FleetService. Calls are sent with
// the JSON content-subtype.
type FleetServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewFleetServiceClient(cc grpc.ClientConnInterface) *FleetServiceClient {
	return &FleetServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FleetServiceClient) CreateDrone(ctx context.Context, in *CreateDroneRequest, opts ...grpc.CallOption) (*DroneResponse, error) {
	return invoke[DroneResponse](ctx, c.cc, "CreateDrone", in, opts)
}

func (c *FleetServiceClient) ListDrones(ctx context.Context, in *ListDronesRequest, opts ...grpc.CallOption) (*ListDronesResponse, error) {
	return invoke[ListDronesResponse](ctx, c.cc, "ListDrones", in, opts)
}

func (c *FleetServiceClient) ListAvailableDrones(ctx context.Context, in *ListAvailableDronesRequest, opts ...grpc.CallOption) (*ListDronesResponse, error) {
	return invoke[ListDronesResponse](ctx, c.cc, "ListAvailableDrones", in, opts)
}

func (c *FleetServiceClient) GetDrone(ctx context.Context, in *GetDroneRequest, opts ...grpc.CallOption) (*DroneResponse, error) {
	return invoke[DroneResponse](ctx, c.cc, "GetDrone", in, opts)
}

func (c *FleetServiceClient) UpdateDrone(ctx context.Context, in *UpdateDroneRequest, opts ...grpc.CallOption) (*DroneResponse, error) {
	return invoke[DroneResponse](ctx, c.cc, "UpdateDrone", in, opts)
}

func (c *FleetServiceClient) DeleteDrone(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error) {
	return invoke[DeleteResponse](ctx, c.cc, "DeleteDrone", in, opts)
}

func (c *FleetServiceClient) CreateMission(ctx context.Context, in *CreateMissionRequest, opts ...grpc.CallOption) (*MissionResponse, error) {
	return invoke[MissionResponse](ctx, c.cc, "CreateMission", in, opts)
}

func (c *FleetServiceClient) ListMissions(ctx context.Context, in *ListMissionsRequest, opts ...grpc.CallOption) (*ListMissionsResponse, error) {
	return invoke[ListMissionsResponse](ctx, c.cc, "ListMissions", in, opts)
}

func (c *FleetServiceClient) GetMission(ctx context.Context, in *GetMissionRequest, opts ...grpc.CallOption) (*MissionResponse, error) {
	return invoke[MissionResponse](ctx, c.cc, "GetMission", in, opts)
}

func (c *FleetServiceClient) UpdateMission(ctx context.Context, in *UpdateMissionRequest, opts ...grpc.CallOption) (*MissionResponse, error) {
	return invoke[MissionResponse](ctx, c.cc, "UpdateMission", in, opts)
}

func (c *FleetServiceClient) DeleteMission(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error) {
	return invoke[DeleteResponse](ctx, c.cc, "DeleteMission", in, opts)
}
