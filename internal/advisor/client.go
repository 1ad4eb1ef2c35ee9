package advisor

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// DefaultTimeout bounds one Advise call.
const DefaultTimeout = 2 * time.Second

// #region client-struct

// Client is a dialogue specialist backed by a remote advisor service.
type Client struct {
	id      string
	conn    *grpc.ClientConn
	cc      grpc.ClientConnInterface
	timeout time.Duration
}

// #endregion client-struct

// #region constructor

// NewClient connects to the advisor service at addr. The connection is lazy; a dead address
// surfaces as an Advise error.
func NewClient(id, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{id: id, conn: conn, cc: conn, timeout: DefaultTimeout}, nil
}

// NewClientWithConn creates a Client over an existing connection. Close is a no-op.
func NewClientWithConn(id string, cc grpc.ClientConnInterface) *Client {
	return &Client{id: id, cc: cc, timeout: DefaultTimeout}
}

// SetTimeout replaces the per-call timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// #endregion constructor

// #region close

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region advise

// ID returns the specialist id.
func (c *Client) ID() string { return c.id }

// Advise sends one advise RPC. Non-string list items in the reply are dropped.
func (c *Client) Advise(question, trigger string, snapshot []string) ([]string, error) {
	snap := make([]any, len(snapshot))
	for i, s := range snapshot {
		snap[i] = s
	}
	req, err := structpb.NewStruct(map[string]any{
		"question": question,
		"trigger":  trigger,
		"snapshot": snap,
	})
	if err != nil {
		return nil, fmt.Errorf("build advise request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	resp := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, adviseMethod, req, resp); err != nil {
		return nil, fmt.Errorf("advise rpc: %w", err)
	}

	advice := make([]string, 0, len(resp.GetValues()))
	for _, v := range resp.GetValues() {
		if sv, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			advice = append(advice, sv.StringValue)
		}
	}
	return advice, nil
}

// #endregion advise
