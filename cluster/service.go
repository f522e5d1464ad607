package cluster

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	serviceName   = "progressive.JobService"
	runJobMethod  = "/" + serviceName + "/RunJob"
	serviceSource = "progressive/cluster/service.go"
)

// jobRequest describes a single Job to a Worker. Workers rebuild the Query from its
// submission and read the partition from their own copy of the Dataset.
type jobRequest struct {
	QueryID    string `json:"queryId"`
	Submission []byte `json:"submission"`
	Index      int    `json:"index"`
	Partition  int    `json:"partition"`
	Path       string `json:"path"`
}

// jobServer is implemented by Workers
type jobServer interface {
	RunJob(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

func runJobHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(jobServer).RunJob(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: runJobMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(jobServer).RunJob(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

var jobServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*jobServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RunJob",
			Handler:    runJobHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: serviceSource,
}

func registerJobServer(s *grpc.Server, srv jobServer) {
	s.RegisterService(&jobServiceDesc, srv)
}

// runJob invokes RunJob over conn
func runJob(ctx context.Context, conn *grpc.ClientConn, req *jobRequest) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	out := new(wrapperspb.BytesValue)
	if err := conn.Invoke(ctx, runJobMethod, &wrapperspb.BytesValue{Value: data}, out); err != nil {
		return nil, err
	}
	return out.Value, nil
}
