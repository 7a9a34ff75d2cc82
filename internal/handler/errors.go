// internal/handler/errors.go
package handler

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SyedDaiam9101/cover-service/internal/inference"
	"github.com/SyedDaiam9101/cover-service/internal/prediction"
	"github.com/SyedDaiam9101/cover-service/internal/preprocess"
)

// ErrCacheDisabled is returned by lookups when no cache is configured
var ErrCacheDisabled = errors.New("prediction cache disabled")

// grpcCode maps known domain errors to gRPC status codes
func grpcCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK

	case errors.Is(err, preprocess.ErrDecode),
		errors.Is(err, preprocess.ErrDegenerateImage):
		return codes.InvalidArgument

	case errors.Is(err, inference.ErrNotInitialized),
		errors.Is(err, ErrCacheDisabled):
		return codes.FailedPrecondition

	case errors.Is(err, prediction.ErrNonFiniteScore):
		// The model produced garbage for a valid image
		return codes.Internal

	case errors.Is(err, context.Canceled):
		return codes.Canceled

	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded

	default:
		// Label, score-length and tensor-shape errors are server faults
		return codes.Internal
	}
}

// grpcError maps known internal errors to appropriate gRPC status errors
func grpcError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := grpcCode(err)
	switch code {
	case codes.InvalidArgument:
		return status.Errorf(code, "invalid image: %v", err)
	case codes.FailedPrecondition:
		return status.Errorf(code, "service not ready: %v", err)
	case codes.Canceled, codes.DeadlineExceeded:
		return status.Error(code, err.Error())
	default:
		return status.Errorf(code, "classification failed: %v", err)
	}
}

// httpStatus maps domain errors to HTTP status codes
func httpStatus(err error) int {
	switch grpcCode(err) {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition:
		return http.StatusServiceUnavailable
	case codes.Canceled:
		return 499
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// invalidArgumentError creates an InvalidArgument gRPC error
func invalidArgumentError(format string, args ...interface{}) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// internalError creates an Internal gRPC error
func internalError(format string, args ...interface{}) error {
	return status.Errorf(codes.Internal, format, args...)
}
