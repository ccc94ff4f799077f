package fdcache

import "go.uber.org/multierr"

// joinErrors aggregates independent descriptor-close failures the way
// the teacher's Engine.Close/Storage.Close propagation does, so a
// single failed close during teardown does not mask the rest.
func joinErrors(errs []error) error {
	return multierr.Combine(errs...)
}
