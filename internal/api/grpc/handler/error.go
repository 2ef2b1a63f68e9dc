package handler

import (
	"errors"

	"google.golang.org/grpc/status"

	"github.com/dtroode/reelscore-server/internal/apierror"
	"github.com/dtroode/reelscore-server/internal/validation"
)

// handleError converts a service failure into a gRPC status. Anything that is
// not a typed API error is reported as a bare internal error.
func handleError(err error) error {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr.GRPCStatus().Err()
	}

	return status.Error(apierror.KindInternal.Code(), apierror.NewErrInternal().Message)
}

// invalidArgument turns validation failures into an InvalidArgument status.
func invalidArgument(errs validation.Errors) error {
	return apierror.NewErrInvalidArgument(errs.Message(), errs.Fields()...).GRPCStatus().Err()
}
