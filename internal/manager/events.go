package manager

// Event represents a manager lifecycle event.
// Minimal and stable: name, servable and version plus optional fields.
type Event struct {
	Name     string
	Servable string
	Version  int64
	Fields   map[string]any
}

// Event names published by the Manager.
const (
	EventAspired     = "aspired"
	EventLoadStart   = "load_start"
	EventLoadDone    = "load_done"
	EventLoadFailed  = "load_failed"
	EventUnloadStart = "unload_start"
	EventUnloadDone  = "unload_done"
)

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
