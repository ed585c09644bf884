package service

import (
	"context"
	"fmt"

	"majority-vote/internal/metrics"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Result is the answer to one FindMajority call
type Result struct {
	Value     int
	Present   bool
	RequestID string
	// Metrics is set for instrumented calls
	Metrics *metrics.Snapshot
}

// Client calls a remote majority service
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to target without transport security. Extra options are applied after
// the default ones.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// FindMajority asks the server for the majority element of values. Values beyond ±2^53 are
// rejected with ErrValueOutOfRange before anything is sent.
func (c *Client) FindMajority(ctx context.Context, values []int, instrument bool) (*Result, error) {
	req, err := encodeRequest(values, instrument)
	if err != nil {
		return nil, err
	}

	var header metadata.MD
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FindMajorityMethod, req, resp, grpc.Header(&header)); err != nil {
		return nil, err
	}

	result := decodeResponse(resp)
	if result.RequestID == "" {
		if ids := header.Get(RequestIDHeader); len(ids) > 0 {
			result.RequestID = ids[0]
		}
	}
	return result, nil
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}
