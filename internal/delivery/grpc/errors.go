package grpc

import (
	"errors"

	"GameMasterService/pkg/apperrors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus переводит ошибку сервиса в gRPC статус
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	case apperrors.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case apperrors.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case apperrors.IsConflict(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
