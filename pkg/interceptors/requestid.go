package interceptors

import (
	"context"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// NewRequestIDInterceptor propagates the request id found in header, or
// generates one, and echoes it on the response.
func NewRequestIDInterceptor(header string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			requestID := req.Header().Get(header)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			ctx = context.WithValue(ctx, requestIDKey{}, requestID)

			resp, err := next(ctx, req)
			if err != nil {
				// Handlers return a typed nil response alongside errors.
				var connectErr *connect.Error
				if asConnectError(err, &connectErr) {
					connectErr.Meta().Set(header, requestID)
				}
				return resp, err
			}
			resp.Header().Set(header, requestID)
			return resp, nil
		}
	}
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}
