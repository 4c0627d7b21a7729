package grpc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/resourceflow-backend/internal/domain"
	"github.com/simaogato/resourceflow-backend/internal/usecase/economy"
	"github.com/simaogato/resourceflow-backend/internal/usecase/store"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "resourceflow.v1.EconomyService"

// EconomyServiceServer is the server API for the EconomyService service
type EconomyServiceServer interface {
	CreateTransfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetContainer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListContainers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RunTick(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the EconomyService for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EconomyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateTransfer", Handler: unaryHandler("CreateTransfer", EconomyServiceServer.CreateTransfer)},
		{MethodName: "GetContainer", Handler: unaryHandler("GetContainer", EconomyServiceServer.GetContainer)},
		{MethodName: "ListContainers", Handler: unaryHandler("ListContainers", EconomyServiceServer.ListContainers)},
		{MethodName: "RunTick", Handler: unaryHandler("RunTick", EconomyServiceServer.RunTick)},
		{MethodName: "GetOrder", Handler: unaryHandler("GetOrder", EconomyServiceServer.GetOrder)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "resourceflow/v1/economy.proto",
}

// RegisterEconomyServiceServer registers srv on s
func RegisterEconomyServiceServer(s grpc.ServiceRegistrar, srv EconomyServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type unaryCall func(EconomyServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + ServiceName + "/" + method

	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(EconomyServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(server, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Server implements the EconomyService gRPC server
type Server struct {
	EconomyService *economy.EconomyService
}

// NewServer creates a new gRPC server instance
func NewServer(economyService *economy.EconomyService) *Server {
	return &Server{
		EconomyService: economyService,
	}
}

// CreateTransfer handles the CreateTransfer RPC
func (s *Server) CreateTransfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, err := handleField(req, "source")
	if err != nil {
		return nil, err
	}

	destination, err := handleField(req, "destination")
	if err != nil {
		return nil, err
	}

	resourceID, present, err := intField(req, "resource_id")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if !present {
		return nil, status.Error(codes.InvalidArgument, "resource_id is required")
	}

	// Parse amount from string to decimal
	rawAmount, err := stringField(req, "amount")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount format: %v", err)
	}

	// Business rules are not checked here; the order is rejected at the next
	// tick if it cannot be applied.
	id := s.EconomyService.CreateTransfer(source, destination, domain.ResourceID(resourceID), amount.InexactFloat64())

	return structpb.NewStruct(map[string]interface{}{
		"order_id": id.String(),
		"state":    string(domain.OrderStatePending),
	})
}

// GetContainer handles the GetContainer RPC. The container is addressed by
// handle or, when no handle is given, by resource_id.
func (s *Server) GetContainer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		view economy.ContainerView
		err  error
	)

	if _, ok := req.GetFields()["handle"]; ok {
		handle, herr := handleField(req, "handle")
		if herr != nil {
			return nil, herr
		}
		view, err = s.EconomyService.Container(handle)
	} else {
		resourceID, present, ferr := intField(req, "resource_id")
		if ferr != nil {
			return nil, status.Errorf(codes.InvalidArgument, "%v", ferr)
		}
		if !present {
			return nil, status.Error(codes.InvalidArgument, "handle or resource_id is required")
		}
		view, err = s.EconomyService.ContainerByResource(domain.ResourceID(resourceID))
	}
	if err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"container": ContainerFromView(view).fields(),
	})
}

// ListContainers handles the ListContainers RPC
func (s *Server) ListContainers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	// Optional category filter, zero means all containers
	categoryID, _, err := intField(req, "category_id")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if categoryID < 0 {
		return nil, status.Error(codes.InvalidArgument, "category_id must be non-negative")
	}

	views := s.EconomyService.Containers(domain.CategoryID(categoryID))

	containers := make([]interface{}, 0, len(views))
	for _, v := range views {
		containers = append(containers, ContainerFromView(v).fields())
	}

	return structpb.NewStruct(map[string]interface{}{
		"containers": containers,
	})
}

// RunTick handles the RunTick RPC
func (s *Server) RunTick(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	report := s.EconomyService.RunTick()
	return structpb.NewStruct(TickFromReport(report).fields())
}

// GetOrder handles the GetOrder RPC
func (s *Server) GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, err := stringField(req, "order_id")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid order_id format: %v", err)
	}

	o, err := s.EconomyService.OrderStatus(id)
	if err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"order": OrderFromDomain(o).fields(),
	})
}

func handleField(req *structpb.Struct, name string) (domain.ContainerHandle, error) {
	raw, err := stringField(req, name)
	if err != nil {
		return domain.ContainerHandle{}, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	handle, err := domain.ParseContainerHandle(raw)
	if err != nil {
		return domain.ContainerHandle{}, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
	}
	return handle, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, economy.ErrContainerNotFound),
		errors.Is(err, economy.ErrOrderNotFound),
		errors.Is(err, store.ErrUnknownHandle):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	case errors.Is(err, store.ErrIdentityChange):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", err.Error())
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", err.Error())
}
