package credentials

import "github.com/pkg/errors"

// Store persists the credential pair across client restarts.
// Implementations hold no business logic: Get returns the stored pair or
// nil when absent (malformed data reads as absent, not as an error), Set
// overwrites atomically, Clear is idempotent.
type Store interface {
	Get() (*Pair, error)
	Set(pair Pair) error
	Clear() error
}

func validatePair(pair Pair) error {
	if !pair.Complete() {
		return errors.New("[Store Set] refusing to persist a partial credential pair")
	}
	return nil
}
