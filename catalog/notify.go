package catalog

// PropertyChangedFunc receives the entity that changed and the logical name
// of the changed field. It is called synchronously from the setter, after
// the store write completed, so a callback that re-reads the store already
// observes the new value.
type PropertyChangedFunc func(source any, field string)

// notifier implements the property-changed observation contract embedded in
// every entity wrapper.
type notifier struct {
	nextToken int
	handlers  map[int]PropertyChangedFunc
}

// OnPropertyChanged subscribes a callback and returns a token for
// Unsubscribe. Observers must unsubscribe before discarding the data source
// to avoid leaking across its lifetime.
func (n *notifier) OnPropertyChanged(fn PropertyChangedFunc) int {
	if n.handlers == nil {
		n.handlers = make(map[int]PropertyChangedFunc)
	}
	n.nextToken++
	n.handlers[n.nextToken] = fn
	return n.nextToken
}

// Unsubscribe removes a previously registered callback.
func (n *notifier) Unsubscribe(token int) {
	delete(n.handlers, token)
}

func (n *notifier) raise(source any, field string) {
	for _, fn := range n.handlers {
		fn(source, field)
	}
}
