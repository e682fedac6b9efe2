// Package serve exposes a trained elcs.Model for inference over gRPC:
// construct a grpc.Server, register a service, Serve() on a listener, log
// via stdlib log. Since no generated protobuf message package is available
// to import honestly, the wire types are google.golang.org/protobuf's own
// pre-generated structpb.Struct/ListValue rather than a custom .proto
// schema, and the service is registered with a hand-written
// grpc.ServiceDesc instead of generated server-registration code.
package serve

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lcslab/go-elcs/elcs"
)

// InferenceServer wraps a trained model for gRPC inference-only access:
// Predict and PredictProba. Training is never exposed over RPC — this
// module does no distributed training.
type InferenceServer struct {
	// mu serializes RPCs: Model.Predict rebuilds the model's shared match
	// set and may draw from its PRNG.
	mu    sync.Mutex
	model *elcs.Model
}

// NewInferenceServer wraps an already-trained model. Fit must have already
// succeeded; the server itself never calls Fit.
func NewInferenceServer(model *elcs.Model) *InferenceServer {
	return &InferenceServer{model: model}
}

func (s *InferenceServer) predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	x, err := structToRow(req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	preds, errs, err := s.model.Predict([][]float64{x})
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if errs[0] != nil {
		return nil, errs[0]
	}
	return structpb.NewStruct(map[string]interface{}{"prediction": preds[0]})
}

func (s *InferenceServer) predictProba(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	x, err := structToRow(req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	probs, errs, err := s.model.PredictProba([][]float64{x})
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if errs[0] != nil {
		return nil, errs[0]
	}
	fields := make(map[string]interface{}, len(probs[0]))
	for label, p := range probs[0] {
		fields[fmt.Sprintf("%v", label)] = p
	}
	return structpb.NewStruct(fields)
}

func structToRow(req *structpb.Struct) ([]float64, error) {
	values := req.GetFields()["x"].GetListValue()
	if values == nil {
		return nil, fmt.Errorf("serve: request is missing a %q list field", "x")
	}
	row := make([]float64, len(values.GetValues()))
	for i, v := range values.GetValues() {
		row[i] = v.GetNumberValue()
	}
	return row, nil
}

// predictHandler/predictProbaHandler adapt InferenceServer's methods to
// grpc.methodHandler's signature, the same shape generated *_grpc.pb.go
// code would produce, but written by hand here.
func predictHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	s := srv.(*InferenceServer)
	if interceptor == nil {
		return s.predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: s, FullMethod: "/elcs.Inference/Predict"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return s.predict(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func predictProbaHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	s := srv.(*InferenceServer)
	if interceptor == nil {
		return s.predictProba(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: s, FullMethod: "/elcs.Inference/PredictProba"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return s.predictProba(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// serviceDesc is the hand-written equivalent of what `protoc-gen-go-grpc`
// would otherwise generate from an Inference service defined in a .proto
// file.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: "elcs.Inference",
	HandlerType: (*InferenceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
		{MethodName: "PredictProba", Handler: predictProbaHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "serve/server.go",
}

// StartInferenceServer listens on addr and serves RPCs against model until
// the listener errs or the process exits, mirroring
// StartEvolutionServer's construct/register/serve/log shape.
func StartInferenceServer(addr string, model *elcs.Model) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("serve: listen on %s: %w", addr, err)
	}
	grpcServer := grpc.NewServer()
	grpcServer.RegisterService(&serviceDesc, NewInferenceServer(model))

	log.Printf("serve: inference server listening on %s", addr)
	return grpcServer.Serve(lis)
}
