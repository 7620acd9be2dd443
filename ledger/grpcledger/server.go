package grpcledger

import (
	"context"
	"log/slog"
	"time"

	slogcontext "github.com/veqryn/slog-context"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/ledgerview/ledger"
)

// Server exposes a ledger.Gateway over the Ledger gRPC service.
type Server struct {
	UnimplementedLedgerServer
	Gateway ledger.Gateway
}

func (s *Server) TotalCount(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	if s == nil || s.Gateway == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing gateway")
	}
	n, err := s.Gateway.TotalCount(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Int64(n), nil
}

func (s *Server) FetchByID(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if s == nil || s.Gateway == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing gateway")
	}
	id := in.GetValue()
	if id < 1 {
		return nil, status.Error(codes.InvalidArgument, ledger.ErrInvalidID.Error())
	}
	e, err := s.Gateway.FetchByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := encodeEntity(e)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// LoggingInterceptor logs every unary call and makes logger available to
// handlers through slogcontext.FromCtx.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		ctx = slogcontext.NewCtx(ctx, logger)
		resp, err := handler(ctx, req)
		code := status.Code(err)
		level := slog.LevelDebug
		if code != codes.OK && code != codes.NotFound {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "rpc",
			"method", info.FullMethod,
			"code", code.String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}
