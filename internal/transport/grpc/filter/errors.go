package filter

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
)

// mapDomainErrorToGRPC converts pipeline errors to gRPC status codes.
func mapDomainErrorToGRPC(err error) error {
	if err == nil {
		return nil
	}

	switch contracts.ClassifyError(err) {
	case contracts.ClassInput:
		return status.Error(codes.InvalidArgument, err.Error())
	case contracts.ClassCatalog:
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
