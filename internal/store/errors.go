package store

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/janisto/fitsocial/internal/domain"
)

// passthrough errors are already classified and returned unchanged.
var passthrough = []error{
	context.Canceled,
	context.DeadlineExceeded,
	domain.ErrUsernameTaken,
	domain.ErrAlreadyRegistered,
	domain.ErrProfileNotFound,
	domain.ErrVersionConflict,
	domain.ErrActivityConflict,
	domain.ErrNetwork,
	domain.ErrServer,
	domain.ErrSchemaMisconfigured,
	domain.ErrNotAuthenticated,
	ErrRelationshipExists,
	ErrRelationshipNotFound,
}

// classify maps a Firestore/gRPC failure onto the domain error taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range passthrough {
		if errors.Is(err, known) {
			return err
		}
	}

	var kind error
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		kind = domain.ErrNetwork
	case codes.FailedPrecondition, codes.InvalidArgument:
		kind = domain.ErrSchemaMisconfigured
	case codes.Unauthenticated, codes.PermissionDenied:
		kind = domain.ErrNotAuthenticated
	case codes.Canceled:
		return context.Canceled
	default:
		kind = domain.ErrServer
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
