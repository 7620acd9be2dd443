// Package grpcledger binds ledger.Gateway to a gRPC service.
package grpcledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	slogcontext "github.com/veqryn/slog-context"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/ledger"
)

// Client implements ledger.Gateway over the Ledger gRPC service.
//
// Every record is validated and checked against the fingerprint the server
// shipped with it before it is handed to the caller.
type Client struct {
	cc     *grpc.ClientConn
	client LedgerClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

var _ ledger.Gateway = (*Client)(nil)

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	// Extra options appended after the defaults.
	Extra []grpc.DialOption
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	dialOpts = append(dialOpts, opts.Extra...)

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("grpcledger: dial %s: %w", target, err)
	}
	return NewClient(cc), nil
}

// NewClient wraps an established connection. Close closes cc.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewLedgerClient(cc)}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) TotalCount(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, ledger.ErrUnavailable
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.TotalCount(ctx, &emptypb.Empty{})
	if err != nil {
		slogcontext.FromCtx(ctx).Debug("ledger total count failed", "err", err)
		return 0, mapRPC(err)
	}
	n := reply.GetValue()
	if n < 0 {
		return 0, fmt.Errorf("%w: negative total count %d", ledger.ErrInvalidRecord, n)
	}
	return n, nil
}

func (c *Client) FetchByID(ctx context.Context, id int64) (entity.Entity, error) {
	if id < 1 {
		return entity.Entity{}, ledger.ErrInvalidID
	}
	if c == nil || c.client == nil {
		return entity.Entity{}, ledger.ErrUnavailable
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.FetchByID(ctx, wrapperspb.Int64(id))
	if err != nil {
		slogcontext.FromCtx(ctx).Debug("ledger fetch failed", "id", id, "err", err)
		return entity.Entity{}, mapRPC(err)
	}
	e, fingerprint, err := decodeEntity(reply)
	if err != nil {
		return entity.Entity{}, err
	}
	if err := e.Validate(); err != nil {
		return entity.Entity{}, fmt.Errorf("%w: %v", ledger.ErrInvalidRecord, err)
	}
	if e.ID != id {
		return entity.Entity{}, fmt.Errorf("%w: asked for %d, got %d", ledger.ErrInvalidRecord, id, e.ID)
	}
	if err := e.VerifyCID(fingerprint); err != nil {
		if errors.Is(err, entity.ErrCIDMismatch) {
			return entity.Entity{}, ledger.ErrFingerprintMismatch
		}
		return entity.Entity{}, err
	}
	return e, nil
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}
