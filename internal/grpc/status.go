package grpcserver

import (
	"log"

	"fleetHQ/internal/apperr"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const errorDomain = "fleethq"

var kindCodes = map[apperr.Kind]codes.Code{
	apperr.KindNotFound:          codes.NotFound,
	apperr.KindForbidden:         codes.PermissionDenied,
	apperr.KindDuplicateKey:      codes.AlreadyExists,
	apperr.KindInvalidRequest:    codes.InvalidArgument,
	apperr.KindValidation:        codes.InvalidArgument,
	apperr.KindUnavailable:       codes.FailedPrecondition,
	apperr.KindInvalidState:      codes.FailedPrecondition,
	apperr.KindHasActiveMissions: codes.FailedPrecondition,
	apperr.KindConflict:          codes.Aborted,
}

// toStatus converts a service error to a gRPC status. The error kind travels
// as the ErrorInfo reason so clients can tell FailedPrecondition cases apart.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	kind := apperr.KindOf(err)
	code, ok := kindCodes[kind]
	if !ok {
		log.Printf("internal error: %v", err)
		code = codes.Internal
	}
	st := status.New(code, apperr.Message(err))
	if detailed, derr := st.WithDetails(&errdetails.ErrorInfo{Reason: string(kind), Domain: errorDomain}); derr == nil {
		st = detailed
	}
	return st.Err()
}

// KindFromStatus recovers the error kind from a status produced by toStatus.
func KindFromStatus(err error) apperr.Kind {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == errorDomain {
			return apperr.Kind(info.GetReason())
		}
	}
	return ""
}
