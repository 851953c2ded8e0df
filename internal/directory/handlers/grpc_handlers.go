package handlers

import (
	"context"

	"github.com/gartstein/bawsala/internal/directory/auth"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName  = "directory.v1.DirectoryService"
	QueryMethod  = "/" + ServiceName + "/Query"
	ReloadMethod = auth.ReloadMethod
)

// DirectoryServiceServer is the gRPC surface of the directory. Requests and
// responses are generic Structs carrying the same JSON documents as the HTTP
// API.
type DirectoryServiceServer interface {
	Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Reload(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// DirectoryServiceDesc describes the service for grpc.Server.RegisterService.
var DirectoryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DirectoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Query", Handler: queryHandler},
		{MethodName: "Reload", Handler: reloadHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func queryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectoryServiceServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: QueryMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DirectoryServiceServer).Query(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func reloadHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectoryServiceServer).Reload(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ReloadMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DirectoryServiceServer).Reload(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// DirectoryHandler provides the gRPC methods, mapping requests to a
// DirectoryController.
type DirectoryHandler struct {
	service DirectoryController
	logger  *zap.Logger
}

// NewDirectoryHandler constructs a new DirectoryHandler with the given service and logger.
func NewDirectoryHandler(service DirectoryController, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		service: service,
		logger:  logger.Named("grpc_handler"),
	}
}

// Query derives the directory view for the request's query, filters, sort
// and locale.
func (h *DirectoryHandler) Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var vr viewRequest
	if err := fromStruct(req, &vr); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	state, err := vr.toState()
	if err != nil {
		return nil, mapServiceError(h.logger, err)
	}

	out, err := toStruct(h.service.View(ctx, state))
	if err != nil {
		return nil, mapServiceError(h.logger, err)
	}
	return out, nil
}

// Reload reloads the catalog and returns the resulting load status.
func (h *DirectoryHandler) Reload(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	h.logger.Info("Catalog reload requested", zap.String("subject", auth.Subject(ctx)))
	if err := h.service.Reload(ctx); err != nil {
		return nil, mapServiceError(h.logger, err)
	}
	out, err := toStruct(h.service.Status())
	if err != nil {
		return nil, mapServiceError(h.logger, err)
	}
	return out, nil
}

// DirectoryClient calls DirectoryService over a client connection.
type DirectoryClient struct {
	cc grpc.ClientConnInterface
}

func NewDirectoryClient(cc grpc.ClientConnInterface) *DirectoryClient {
	return &DirectoryClient{cc: cc}
}

func (c *DirectoryClient) Query(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, QueryMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DirectoryClient) Reload(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ReloadMethod, &structpb.Struct{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
