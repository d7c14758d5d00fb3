package document

import (
	"sync"

	"github.com/google/uuid"
	"github.com/modforge/core/errors"
	"github.com/modforge/core/jsonval"
	"github.com/modforge/core/logging"
	"github.com/sirupsen/logrus"
)

// Event describes one change to a document. Partial changes carry the path
// and the new value there; whole-document events set Full and observers are
// expected to refetch the snapshot from the store.
type Event struct {
	Doc    ID
	Full   bool
	Path   Path
	Value  jsonval.Value
	Origin string
}

// Observer receives change events for a subscribed document. Observers may
// read snapshots through Store.Get but must route any mutation back through
// the command stack, never into the store directly.
type Observer interface {
	DocumentChanged(ev Event) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event) error

func (f ObserverFunc) DocumentChanged(ev Event) error { return f(ev) }

// Subscription is the handle returned by Subscribe, used to unsubscribe.
type Subscription struct {
	id  uuid.UUID
	doc ID
}

// Doc returns the document the subscription is attached to.
func (s Subscription) Doc() ID { return s.doc }

type subscriber struct {
	id       uuid.UUID
	observer Observer
}

// Notifier is the per-document observer registry. Delivery is synchronous,
// in subscription order, on the calling goroutine. One failing observer is
// logged and skipped; the rest of the fan-out still runs.
type Notifier struct {
	mu     sync.Mutex
	subs   map[ID][]subscriber
	logger *logrus.Entry
}

// NewNotifier creates an empty registry.
func NewNotifier() *Notifier {
	return &Notifier{
		subs:   make(map[ID][]subscriber),
		logger: logging.NewLogger("change-notifier"),
	}
}

// Subscribe registers an observer for a document's change events.
func (n *Notifier) Subscribe(doc ID, obs Observer) Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := uuid.New()
	n.subs[doc] = append(n.subs[doc], subscriber{id: id, observer: obs})
	return Subscription{id: id, doc: doc}
}

// Unsubscribe removes a single subscription.
func (n *Notifier) Unsubscribe(sub Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()
	subs := n.subs[sub.doc]
	for i, s := range subs {
		if s.id == sub.id {
			n.subs[sub.doc] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// DropDocument removes every subscription for a document. Used when the
// document is closed.
func (n *Notifier) DropDocument(doc ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, doc)
}

// Notify delivers the event to every observer of the document, in
// subscription order. Observer failures and panics are contained per
// observer so they can neither stop the fan-out nor reach the caller.
func (n *Notifier) Notify(ev Event) {
	n.mu.Lock()
	subs := make([]subscriber, len(n.subs[ev.Doc]))
	copy(subs, n.subs[ev.Doc])
	n.mu.Unlock()

	for _, s := range subs {
		n.deliver(s, ev)
	}
}

func (n *Notifier) deliver(s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.WithFields(logrus.Fields{
				"document": ev.Doc,
				"panic":    r,
			}).Error("Observer panicked during notification, continuing fan-out")
		}
	}()
	if err := s.observer.DocumentChanged(ev); err != nil {
		n.logger.WithError(errors.ObserverFailed(string(ev.Doc), err)).
			Warn("Observer failed during notification, continuing fan-out")
	}
}
