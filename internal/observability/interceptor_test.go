package observability

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsInterceptor(t *testing.T) {
	m := NewMetricsForTesting()
	intercept := NewMetricsInterceptor(m)

	ok := intercept(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&struct{}{}), nil
	})
	failing := intercept(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	})

	_, err := ok(context.Background(), connect.NewRequest(&struct{}{}))
	require.NoError(t, err)
	_, err = ok(context.Background(), connect.NewRequest(&struct{}{}))
	require.NoError(t, err)
	_, err = failing(context.Background(), connect.NewRequest(&struct{}{}))
	require.Error(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RPCRequests.WithLabelValues("", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RPCRequests.WithLabelValues("", "not_found")))
}

func TestMetricsInterceptor_NilMetrics(t *testing.T) {
	next := NewMetricsInterceptor(nil)(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&struct{}{}), nil
	})
	_, err := next(context.Background(), connect.NewRequest(&struct{}{}))
	assert.NoError(t, err)
}
