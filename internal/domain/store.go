package domain

// RecordStore is the per-entity persistence contract: a durable mapping from
// string ID to record. Implementations return values that do not alias stored
// state, so a caller mutating a fetched record leaves the store untouched
// until it inserts the record back.
type RecordStore[T any] interface {
	// Get returns the record for id, or an error wrapping ErrNotFound
	Get(id string) (T, error)

	// Insert stores value under id, replacing any existing record
	Insert(id string, value T) error

	// Remove deletes the record for id, or returns an error wrapping
	// ErrNotFound if it is absent
	Remove(id string) error

	// Values returns all records in unspecified order
	Values() ([]T, error)
}
