// Package service exposes the majority vote over gRPC. Messages are google.protobuf.Struct values
// so no generated code is needed:
//
//	request:  {"values": [1, 2, 1], "instrument": true}
//	response: {"present": true, "value": 1, "request_id": "...", "metrics": {...}}
package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"majority-vote/internal/metrics"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName        = "majority.v1.MajorityService"
	FindMajorityMethod = "/" + ServiceName + "/FindMajority"

	// RequestIDHeader carries the server assigned request ID in the response headers
	RequestIDHeader = "x-request-id"

	// maxExactValue bounds the integers a double holds exactly
	maxExactValue = 1 << 53
)

// Request and response field names
const (
	fieldValues     = "values"
	fieldInstrument = "instrument"
	fieldPresent    = "present"
	fieldValue      = "value"
	fieldRequestID  = "request_id"
	fieldMetrics    = "metrics"
)

var ErrValueOutOfRange = errors.New("value is not exactly representable in a request")

// MajorityServiceServer is the server API of the majority service
type MajorityServiceServer interface {
	FindMajority(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the majority service for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MajorityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "FindMajority",
			Handler:    findMajorityHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "majority/v1/majority.proto",
}

func findMajorityHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MajorityServiceServer).FindMajority(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: FindMajorityMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MajorityServiceServer).FindMajority(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// decodeRequest extracts the sequence and the instrumentation flag. A missing values field is an
// empty sequence.
func decodeRequest(req *structpb.Struct) ([]int, bool, error) {
	fields := req.GetFields()

	var instrument bool
	if v, ok := fields[fieldInstrument]; ok {
		b, ok := v.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return nil, false, status.Errorf(codes.InvalidArgument, "%s must be a bool", fieldInstrument)
		}
		instrument = b.BoolValue
	}

	v, ok := fields[fieldValues]
	if !ok {
		return nil, instrument, nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, false, status.Errorf(codes.InvalidArgument, "%s must be a list", fieldValues)
	}

	items := list.ListValue.GetValues()
	values := make([]int, len(items))
	for i, item := range items {
		num, ok := item.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, false, status.Errorf(codes.InvalidArgument, "%s[%d] is not a number", fieldValues, i)
		}
		f := num.NumberValue
		if f != math.Trunc(f) || math.Abs(f) > maxExactValue {
			return nil, false, status.Errorf(codes.InvalidArgument, "%s[%d] = %v is not an integer within ±2^53", fieldValues, i, f)
		}
		values[i] = int(f)
	}
	return values, instrument, nil
}

func encodeRequest(values []int, instrument bool) (*structpb.Struct, error) {
	items := make([]*structpb.Value, len(values))
	for i, v := range values {
		if v > maxExactValue || v < -maxExactValue {
			return nil, fmt.Errorf("%w: values[%d] = %d", ErrValueOutOfRange, i, v)
		}
		items[i] = structpb.NewNumberValue(float64(v))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldValues:     structpb.NewListValue(&structpb.ListValue{Values: items}),
		fieldInstrument: structpb.NewBoolValue(instrument),
	}}, nil
}

func encodeResponse(requestID string, value int, present bool, snapshot *metrics.Snapshot) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldPresent:   structpb.NewBoolValue(present),
		fieldRequestID: structpb.NewStringValue(requestID),
	}
	if present {
		fields[fieldValue] = structpb.NewNumberValue(float64(value))
	}
	if snapshot != nil {
		fields[fieldMetrics] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"comparisons":  structpb.NewNumberValue(float64(snapshot.Comparisons)),
			"assignments":  structpb.NewNumberValue(float64(snapshot.Assignments)),
			"iterations":   structpb.NewNumberValue(float64(snapshot.Iterations)),
			"elapsed_ns":   structpb.NewNumberValue(float64(snapshot.ElapsedNs)),
			"elapsed_ms":   structpb.NewNumberValue(snapshot.ElapsedMs),
			"memory_bytes": structpb.NewNumberValue(float64(snapshot.MemoryBytes)),
		}})
	}
	return &structpb.Struct{Fields: fields}
}

func decodeResponse(resp *structpb.Struct) *Result {
	fields := resp.GetFields()
	result := &Result{
		Present:   fields[fieldPresent].GetBoolValue(),
		Value:     int(fields[fieldValue].GetNumberValue()),
		RequestID: fields[fieldRequestID].GetStringValue(),
	}
	if m := fields[fieldMetrics].GetStructValue(); m != nil {
		f := m.GetFields()
		result.Metrics = &metrics.Snapshot{
			Comparisons: uint64(f["comparisons"].GetNumberValue()),
			Assignments: uint64(f["assignments"].GetNumberValue()),
			Iterations:  uint64(f["iterations"].GetNumberValue()),
			ElapsedNs:   int64(f["elapsed_ns"].GetNumberValue()),
			ElapsedMs:   f["elapsed_ms"].GetNumberValue(),
			MemoryBytes: uint64(f["memory_bytes"].GetNumberValue()),
		}
	}
	return result
}
