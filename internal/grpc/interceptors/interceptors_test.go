package interceptors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var info = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

func TestRecoveryInterceptorConvertsPanic(t *testing.T) {
	resp, err := RecoveryInterceptor()(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	want := errors.New("plain")
	resp, err := LoggingInterceptor()(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "resp", want
	})
	assert.Equal(t, "resp", resp)
	assert.Equal(t, want, err)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, codes.OK, codeOf(nil))
	assert.Equal(t, codes.NotFound, codeOf(status.Error(codes.NotFound, "x")))
	assert.Equal(t, codes.Internal, codeOf(errors.New("x")))
}

func TestRequestIDFromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "abc"))
	assert.Equal(t, "abc", requestIDFrom(ctx))
	assert.NotEmpty(t, requestIDFrom(context.Background()))
}
