package catalog

import (
	"fmt"

	"github.com/chrfin/MovieCollection-sub001/datastore"
)

// CollectionChangedFunc receives the items added to or removed from an
// observable collection. Exactly one of the slices is non-empty per call.
type CollectionChangedFunc[T any] func(added, removed []T)

// List is an ordered, observable collection of entities. Ordering follows
// insertion order. Mutation happens only through the owning entity or the
// data source façade; observers see every change synchronously, after the
// backing rows were written.
type List[T comparable] struct {
	items     []T
	nextToken int
	handlers  map[int]CollectionChangedFunc[T]
}

// Len returns the number of items.
func (l *List[T]) Len() int { return len(l.items) }

// At returns the item at index i.
func (l *List[T]) At(i int) T { return l.items[i] }

// Items returns a copy of the collection in order.
func (l *List[T]) Items() []T {
	items := make([]T, len(l.items))
	copy(items, l.items)
	return items
}

// Index returns the position of item, or -1.
func (l *List[T]) Index(item T) int {
	for i, it := range l.items {
		if it == item {
			return i
		}
	}
	return -1
}

// OnChanged subscribes a callback and returns a token for Unsubscribe.
func (l *List[T]) OnChanged(fn CollectionChangedFunc[T]) int {
	if l.handlers == nil {
		l.handlers = make(map[int]CollectionChangedFunc[T])
	}
	l.nextToken++
	l.handlers[l.nextToken] = fn
	return l.nextToken
}

// Unsubscribe removes a previously registered callback.
func (l *List[T]) Unsubscribe(token int) {
	delete(l.handlers, token)
}

func (l *List[T]) add(item T) {
	l.items = append(l.items, item)
	l.notify([]T{item}, nil)
}

func (l *List[T]) removeAt(i int) {
	item := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.notify(nil, []T{item})
}

// attach appends without notifying; used while materializing the store.
func (l *List[T]) attach(item T) {
	l.items = append(l.items, item)
}

func (l *List[T]) notify(added, removed []T) {
	for _, fn := range l.handlers {
		fn(added, removed)
	}
}

// linkList keeps an observable collection consistent with a link table: one
// row per membership, carrying the parent id, the child id and a position
// column that preserves insertion order across reloads.
type linkList[T comparable] struct {
	List[T]

	ds        *DataSource
	table     string
	parentCol string
	childCol  string
	parentID  int64
	rowIDs    []int64
}

func newLinkList[T comparable](ds *DataSource, table, parentCol, childCol string, parentID int64) *linkList[T] {
	return &linkList[T]{ds: ds, table: table, parentCol: parentCol, childCol: childCol, parentID: parentID}
}

// addLink inserts the link row, then appends the item and notifies. The
// collection is a set; adding an item already present is a no-op.
func (l *linkList[T]) addLink(item T, childID int64) error {
	if l.Index(item) >= 0 {
		return nil
	}
	id, err := l.ds.store.InsertRow(l.table, datastore.Row{
		l.parentCol: l.parentID,
		l.childCol:  childID,
		"position":  int64(l.Len()),
	})
	if err != nil {
		return err
	}
	l.rowIDs = append(l.rowIDs, id)
	l.add(item)
	return nil
}

// removeLink deletes the link row, then evicts the item and notifies.
func (l *linkList[T]) removeLink(item T) error {
	i := l.Index(item)
	if i < 0 {
		return fmt.Errorf("item not in collection %s: %w", l.table, datastore.ErrNotFound)
	}
	if err := l.ds.store.DeleteRow(l.table, l.rowIDs[i]); err != nil {
		return err
	}
	l.rowIDs = append(l.rowIDs[:i], l.rowIDs[i+1:]...)
	l.removeAt(i)
	return nil
}

// attachLink appends an already-persisted membership during load.
func (l *linkList[T]) attachLink(item T, rowID int64) {
	l.rowIDs = append(l.rowIDs, rowID)
	l.attach(item)
}

// deleteAll removes every link row, evicting items back to front.
func (l *linkList[T]) deleteAll() error {
	for i := l.Len() - 1; i >= 0; i-- {
		if err := l.ds.store.DeleteRow(l.table, l.rowIDs[i]); err != nil {
			return err
		}
		l.rowIDs = l.rowIDs[:i]
		l.removeAt(i)
	}
	return nil
}
