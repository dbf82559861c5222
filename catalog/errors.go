package catalog

import "fmt"

// ReferenceError reports a foreign key that could not be resolved at
// construction time because the referenced collection was not loaded yet.
// Construction aborts with this error instead of producing a
// partially-initialized entity.
type ReferenceError struct {
	Table string
	ID    int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference to %s row %d: collection not loaded", e.Table, e.ID)
}
