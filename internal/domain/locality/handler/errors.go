package handler

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, types.ErrInvalidRadius),
		errors.Is(err, types.ErrUnknownCity),
		errors.Is(err, types.ErrBadRequest):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, types.ErrInvariantViolation):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, types.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, types.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, types.ErrQuotaExceeded):
		return connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
