package zk

import (
	"sync"

	"github.com/danmuck/zkctl/internal/proto"
)

// Event is delivered to watch channels and the session event stream.
type Event struct {
	Type  proto.EventType
	State proto.KeeperState
	Path  string
	Err   error
}

type watchKind int

const (
	watchData watchKind = iota
	watchExist
	watchChild
)

type watchKey struct {
	path string
	kind watchKind
}

// watchRegistry tracks armed watches by (path, kind). Watches are
// one-shot: a matching event removes the registration before delivery.
// Events with no matching registration are dropped.
type watchRegistry struct {
	mu       sync.Mutex
	watchers map[watchKey][]chan Event
}

func newWatchRegistry() *watchRegistry {
	return &watchRegistry{watchers: make(map[watchKey][]chan Event)}
}

// Add arms a watch and returns its delivery channel. The channel has
// room for the single event plus a terminal session event.
func (w *watchRegistry) Add(path string, kind watchKind) <-chan Event {
	ch := make(chan Event, 2)
	key := watchKey{path: path, kind: kind}
	w.mu.Lock()
	w.watchers[key] = append(w.watchers[key], ch)
	w.mu.Unlock()
	return ch
}

// Remove disarms one channel registered under (path, kind). Used when
// the operation that armed the watch fails.
func (w *watchRegistry) Remove(path string, kind watchKind, ch <-chan Event) {
	key := watchKey{path: path, kind: kind}
	w.mu.Lock()
	defer w.mu.Unlock()
	chans := w.watchers[key]
	for i := range chans {
		if chans[i] == ch {
			chans = append(chans[:i], chans[i+1:]...)
			break
		}
	}
	if len(chans) == 0 {
		delete(w.watchers, key)
	} else {
		w.watchers[key] = chans
	}
}

// kindsFor maps a server event onto the watch classes it fires.
func kindsFor(t proto.EventType) []watchKind {
	switch t {
	case proto.EventNodeCreated:
		return []watchKind{watchExist}
	case proto.EventNodeDeleted:
		return []watchKind{watchData, watchExist, watchChild}
	case proto.EventNodeDataChanged:
		return []watchKind{watchData, watchExist}
	case proto.EventNodeChildrenChanged:
		return []watchKind{watchChild}
	}
	return nil
}

// Dispatch delivers ev to every armed watch it fires and disarms them.
// Returns the number of channels notified.
func (w *watchRegistry) Dispatch(ev Event) int {
	var fired []chan Event
	w.mu.Lock()
	for _, kind := range kindsFor(ev.Type) {
		key := watchKey{path: ev.Path, kind: kind}
		if chans, ok := w.watchers[key]; ok {
			fired = append(fired, chans...)
			delete(w.watchers, key)
		}
	}
	w.mu.Unlock()

	for _, ch := range fired {
		ch <- ev
		close(ch)
	}
	return len(fired)
}

// Paths snapshots armed watch paths per class, for watch replay after a
// reconnect.
func (w *watchRegistry) Paths() (data, exist, child []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for key := range w.watchers {
		switch key.kind {
		case watchData:
			data = append(data, key.path)
		case watchExist:
			exist = append(exist, key.path)
		case watchChild:
			child = append(child, key.path)
		}
	}
	return data, exist, child
}

// CloseAll delivers a terminal event to every armed watch and empties the
// registry. Used on session expiry and close.
func (w *watchRegistry) CloseAll(ev Event) {
	w.mu.Lock()
	watchers := w.watchers
	w.watchers = make(map[watchKey][]chan Event)
	w.mu.Unlock()

	for _, chans := range watchers {
		for _, ch := range chans {
			ch <- ev
			close(ch)
		}
	}
}

func (w *watchRegistry) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, chans := range w.watchers {
		n += len(chans)
	}
	return n
}
