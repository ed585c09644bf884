package service

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"majority-vote/internal/logging"
	"majority-vote/internal/metrics"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writes of server goroutines
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// startServer serves over an in-memory listener and returns a connected client
func startServer(t *testing.T, opts ...ServerOption) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	s := NewServer(opts...)
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.ForceShutdown)

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

func callContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestFindMajority(t *testing.T) {
	client := startServer(t)
	ctx := callContext(t)

	tests := []struct {
		name    string
		values  []int
		value   int
		present bool
	}{
		{"majority", []int{2, 2, 1, 1, 2, 2, 3}, 2, true},
		{"no majority", []int{1, 2, 3}, 0, false},
		{"single element", []int{7}, 7, true},
		{"empty", nil, 0, false},
		{"negative values", []int{-4, -4, 9}, -4, true},
		{"exact bound", []int{1 << 53, 1 << 53, -(1 << 53)}, 1 << 53, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.FindMajority(ctx, tt.values, false)
			require.NoError(t, err)
			assert.Equal(t, tt.present, result.Present)
			assert.Equal(t, tt.value, result.Value)
			assert.Nil(t, result.Metrics)
		})
	}
}

func TestFindMajority_Instrumented(t *testing.T) {
	reg := prom.NewRegistry()
	client := startServer(t, WithExporter(metrics.NewPrometheusExporter(reg)))
	ctx := callContext(t)

	values := []int{1, 1, 2, 1, 3}
	result, err := client.FindMajority(ctx, values, true)
	require.NoError(t, err)

	assert.True(t, result.Present)
	assert.Equal(t, 1, result.Value)
	require.NotNil(t, result.Metrics)
	assert.Equal(t, uint64(2*len(values)), result.Metrics.Iterations)
	assert.Equal(t, uint64(3*len(values)+1), result.Metrics.Comparisons)
	assert.Positive(t, result.Metrics.Assignments)

	t.Run("plain calls are not exported", func(t *testing.T) {
		_, err := client.FindMajority(ctx, values, false)
		require.NoError(t, err)

		mfs, err := reg.Gather()
		require.NoError(t, err)
		var runs float64
		for _, mf := range mfs {
			if mf.GetName() == "majority_runs_total" {
				runs = mf.GetMetric()[0].GetCounter().GetValue()
			}
		}
		assert.Equal(t, 1.0, runs)
	})
}

func TestFindMajority_RequestIDs(t *testing.T) {
	logs := &syncBuffer{}
	client := startServer(t, WithLogger(logging.NewWithWriter(logs, "majority", false)))
	ctx := callContext(t)

	first, err := client.FindMajority(ctx, []int{1}, false)
	require.NoError(t, err)
	second, err := client.FindMajority(ctx, []int{1}, false)
	require.NoError(t, err)

	assert.NotEmpty(t, first.RequestID)
	assert.NotEqual(t, first.RequestID, second.RequestID)
	assert.Contains(t, logs.String(), "["+first.RequestID+"] n=1 present=true")
}

func TestFindMajority_InvalidArgument(t *testing.T) {
	client := startServer(t)
	ctx := callContext(t)

	list := func(values ...*structpb.Value) *structpb.Value {
		return structpb.NewListValue(&structpb.ListValue{Values: values})
	}

	tests := []struct {
		name   string
		fields map[string]*structpb.Value
	}{
		{"values not a list", map[string]*structpb.Value{"values": structpb.NewStringValue("1,2")}},
		{"value not a number", map[string]*structpb.Value{"values": list(structpb.NewStringValue("x"))}},
		{"fractional value", map[string]*structpb.Value{"values": list(structpb.NewNumberValue(1.5))}},
		{"value above 2^53", map[string]*structpb.Value{"values": list(structpb.NewNumberValue(1 << 54))}},
		{"value below -2^53", map[string]*structpb.Value{"values": list(structpb.NewNumberValue(-(1 << 54)))}},
		{"instrument not a bool", map[string]*structpb.Value{"instrument": structpb.NewStringValue("yes")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := new(structpb.Struct)
			err := client.conn.Invoke(ctx, FindMajorityMethod, &structpb.Struct{Fields: tt.fields}, resp)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}

	t.Run("missing values is an empty sequence", func(t *testing.T) {
		resp := new(structpb.Struct)
		err := client.conn.Invoke(ctx, FindMajorityMethod, &structpb.Struct{}, resp)
		require.NoError(t, err)
		assert.False(t, resp.GetFields()["present"].GetBoolValue())
	})
}

func TestClient_RejectsOutOfRangeValues(t *testing.T) {
	client := startServer(t)

	_, err := client.FindMajority(callContext(t), []int{1, 1<<53 + 1}, false)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestRequestIDContext(t *testing.T) {
	_, ok := RequestID(context.Background())
	assert.False(t, ok)

	ctx := WithRequestID(context.Background(), "abc")
	id, ok := RequestID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	assert.Equal(t, "service.ctxKey[string](requestID)", requestIDKey.String())
}
