package advisor

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/alive-runtime/internal/dialogue"
	"github.com/danielpatrickdp/alive-runtime/internal/logging"
)

// #region service-desc

// The advisor service has one unary method. Requests are a Struct with "question", "trigger"
// and "snapshot" fields; responses are a ListValue of advice strings.
const (
	serviceName  = "alive.advisor.v1.Advisor"
	adviseMethod = "/" + serviceName + "/Advise"
)

// AdvisorServer is the server side of the advisor service.
type AdvisorServer interface {
	Advise(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AdvisorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Advise", Handler: adviseHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alive/advisor/v1/advisor.proto",
}

func adviseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdvisorServer).Advise(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: adviseMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdvisorServer).Advise(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterAdvisorServer registers srv on s.
func RegisterAdvisorServer(s grpc.ServiceRegistrar, srv AdvisorServer) {
	s.RegisterService(&serviceDesc, srv)
}

// #endregion service-desc

// #region server

// Server exposes a local specialist over the advisor service.
type Server struct {
	specialist dialogue.Specialist
}

// NewServer wraps sp.
func NewServer(sp dialogue.Specialist) *Server {
	return &Server{specialist: sp}
}

// Advise decodes the request and asks the wrapped specialist.
func (s *Server) Advise(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	fields := req.GetFields()
	question := fields["question"].GetStringValue()
	trigger := fields["trigger"].GetStringValue()
	var snapshot []string
	for _, v := range fields["snapshot"].GetListValue().GetValues() {
		if sv, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			snapshot = append(snapshot, sv.StringValue)
		}
	}

	advice, err := s.specialist.Advise(question, trigger, snapshot)
	if err != nil {
		logging.New("advisor").Warn("specialist failed", "specialist", s.specialist.ID(), "err", err)
		return nil, status.Errorf(codes.Internal, "specialist %s: %v", s.specialist.ID(), err)
	}
	return stringList(advice)
}

// #endregion server

// #region serve

// Serve runs the advisor service for sp on lis until ctx is cancelled.
func Serve(ctx context.Context, lis net.Listener, sp dialogue.Specialist) error {
	s := grpc.NewServer()
	RegisterAdvisorServer(s, NewServer(sp))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			s.GracefulStop()
		case <-stop:
		}
	}()

	logging.New("advisor").Info("serving", "addr", lis.Addr().String(), "specialist", sp.ID())
	if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve advisor: %w", err)
	}
	return nil
}

// #endregion serve

func stringList(values []string) (*structpb.ListValue, error) {
	items := make([]any, len(values))
	for i, v := range values {
		items[i] = v
	}
	return structpb.NewList(items)
}
