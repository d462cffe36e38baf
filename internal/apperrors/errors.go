// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the store-facing taxonomy. Callers branch with
// errors.Is; handlers translate them into HTTP status codes.
var (
	ErrNotFound              = errors.New("not found")
	ErrDuplicate             = errors.New("duplicate")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrStoreUnavailable      = errors.New("store unavailable")
	ErrInvalidReceipt        = errors.New("invalid ledger receipt")
	ErrUnauthorized          = errors.New("unauthorized")
)

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Duplicatef(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrDuplicate)...)
}

// Unavailable wraps a transient infrastructure failure. The original cause is
// kept in the message; errors.Is matches ErrStoreUnavailable.
func Unavailable(op string, cause error) error {
	return fmt.Errorf("%s: %v: %w", op, cause, ErrStoreUnavailable)
}

// PartialReconciliationError reports that one of the three purchase steps
// failed after an earlier step committed, with enough detail for operator
// replay. It is never swallowed: the caller re-invokes recordPurchase with the
// same txHash and the coordinator resumes from the failed step.
type PartialReconciliationError struct {
	TxHash string
	Step   string
	Err    error
}

func (e *PartialReconciliationError) Error() string {
	return fmt.Sprintf("partial reconciliation of tx %s at step %s: %v", e.TxHash, e.Step, e.Err)
}

func (e *PartialReconciliationError) Unwrap() error {
	return e.Err
}

func AsPartialReconciliation(err error) (*PartialReconciliationError, bool) {
	var pre *PartialReconciliationError
	if errors.As(err, &pre) {
		return pre, true
	}
	return nil, false
}
