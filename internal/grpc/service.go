package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the playback service.
const ServiceName = "jellyplay.v1.PlaybackService"

// Method names of the playback service.
const (
	MethodBuildDeviceProfile = "BuildDeviceProfile"
	MethodOpen               = "Open"
	MethodPlayNext           = "PlayNext"
	MethodPlayPrevious       = "PlayPrevious"
	MethodSelectAudio        = "SelectAudio"
	MethodSelectSubtitle     = "SelectSubtitle"
	MethodReportProgress     = "ReportProgress"
	MethodStop               = "Stop"
	MethodChapterAt          = "ChapterAt"
	MethodState              = "State"
)

// PlaybackServiceServer is the playback service. Requests and responses are
// google.protobuf.Struct documents so renderers in any language can drive it
// without generated stubs.
type PlaybackServiceServer interface {
	BuildDeviceProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Open(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PlayNext(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PlayPrevious(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SelectAudio(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SelectSubtitle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReportProgress(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Stop(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChapterAt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	State(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(PlaybackServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PlaybackServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PlaybackServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func method(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{MethodName: name, Handler: unaryHandler(name, call)}
}

// PlaybackServiceDesc describes the service to grpc.Server.RegisterService.
var PlaybackServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlaybackServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(MethodBuildDeviceProfile, PlaybackServiceServer.BuildDeviceProfile),
		method(MethodOpen, PlaybackServiceServer.Open),
		method(MethodPlayNext, PlaybackServiceServer.PlayNext),
		method(MethodPlayPrevious, PlaybackServiceServer.PlayPrevious),
		method(MethodSelectAudio, PlaybackServiceServer.SelectAudio),
		method(MethodSelectSubtitle, PlaybackServiceServer.SelectSubtitle),
		method(MethodReportProgress, PlaybackServiceServer.ReportProgress),
		method(MethodStop, PlaybackServiceServer.Stop),
		method(MethodChapterAt, PlaybackServiceServer.ChapterAt),
		method(MethodState, PlaybackServiceServer.State),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jellyplay/v1/playback.proto",
}

// RegisterPlaybackServiceServer registers srv on s.
func RegisterPlaybackServiceServer(s grpc.ServiceRegistrar, srv PlaybackServiceServer) {
	s.RegisterService(&PlaybackServiceDesc, srv)
}

// PlaybackClient calls the playback service.
type PlaybackClient struct {
	cc grpc.ClientConnInterface
}

// NewPlaybackClient wraps a connection.
func NewPlaybackClient(cc grpc.ClientConnInterface) *PlaybackClient {
	return &PlaybackClient{cc: cc}
}

// Call invokes method with the given request fields. A nil map sends an
// empty request.
func (c *PlaybackClient) Call(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
