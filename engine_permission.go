package authcore

import (
	"context"
	"errors"
	"fmt"

	internalmetrics "github.com/cafeplatform/authcore/internal/metrics"
	"github.com/cafeplatform/authcore/permission"
)

// HasPermission resolves the subject's roles through the SubjectStore and
// tests membership in the union of their permission sets. Resolution is
// deterministic given the role set; the static table is never consulted
// for anything but role names.
func (e *Engine) HasPermission(ctx context.Context, subjectID string, perm permission.Permission) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}

	roles, err := e.subjects.RolesFor(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return e.permTable.Grants(roles, perm), nil
}

// Require is the generic gate protected operations call with their
// declared [permission.Requirement]. It returns ErrPermissionDenied when
// the subject's roles do not grant the capability; callers are expected to
// short-circuit with a forbidden outcome.
func (e *Engine) Require(ctx context.Context, subjectID string, req permission.Requirement) error {
	ok, err := e.HasPermission(ctx, subjectID, req.Perm)
	if err != nil {
		return err
	}
	if !ok {
		e.metrics.Inc(internalmetrics.MetricPermissionDenied)
		return fmt.Errorf("%w: %s", ErrPermissionDenied, req.Perm)
	}
	return nil
}
