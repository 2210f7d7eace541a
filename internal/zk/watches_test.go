package zk

import (
	"sort"
	"testing"

	"github.com/danmuck/zkctl/internal/proto"
)

func TestWatchFiresOnceThenCloses(t *testing.T) {
	w := newWatchRegistry()
	ch := w.Add("/a", watchData)

	ev := Event{Type: proto.EventNodeDataChanged, Path: "/a"}
	if fired := w.Dispatch(ev); fired != 1 {
		t.Fatalf("fired %d, want 1", fired)
	}
	got, ok := <-ch
	if !ok || got.Type != proto.EventNodeDataChanged {
		t.Fatalf("event = %+v ok=%v", got, ok)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed after delivery")
	}

	// Disarmed: the same event again matches nothing.
	if fired := w.Dispatch(ev); fired != 0 {
		t.Fatalf("refired %d, want 0", fired)
	}
}

func TestUnmatchedEventDropped(t *testing.T) {
	w := newWatchRegistry()
	w.Add("/a", watchData)
	if fired := w.Dispatch(Event{Type: proto.EventNodeDataChanged, Path: "/b"}); fired != 0 {
		t.Fatalf("event for unwatched path fired %d", fired)
	}
	if w.Len() != 1 {
		t.Fatalf("registration lost")
	}
}

func TestDeleteFiresAllWatchClasses(t *testing.T) {
	w := newWatchRegistry()
	data := w.Add("/a", watchData)
	exist := w.Add("/a", watchExist)
	child := w.Add("/a", watchChild)

	if fired := w.Dispatch(Event{Type: proto.EventNodeDeleted, Path: "/a"}); fired != 3 {
		t.Fatalf("fired %d, want 3", fired)
	}
	for _, ch := range []<-chan Event{data, exist, child} {
		if ev := <-ch; ev.Type != proto.EventNodeDeleted {
			t.Fatalf("event = %+v", ev)
		}
	}
}

func TestChildrenChangeOnlyFiresChildWatch(t *testing.T) {
	w := newWatchRegistry()
	w.Add("/a", watchData)
	w.Add("/a", watchChild)
	if fired := w.Dispatch(Event{Type: proto.EventNodeChildrenChanged, Path: "/a"}); fired != 1 {
		t.Fatalf("fired %d, want 1", fired)
	}
	if w.Len() != 1 {
		t.Fatalf("data watch should remain armed")
	}
}

func TestRemoveDisarms(t *testing.T) {
	w := newWatchRegistry()
	ch := w.Add("/a", watchData)
	w.Remove("/a", watchData, ch)
	if w.Len() != 0 {
		t.Fatalf("registry not empty after remove")
	}
	if fired := w.Dispatch(Event{Type: proto.EventNodeDataChanged, Path: "/a"}); fired != 0 {
		t.Fatalf("removed watch fired")
	}
}

func TestPathsSnapshotForReplay(t *testing.T) {
	w := newWatchRegistry()
	w.Add("/a", watchData)
	w.Add("/b", watchExist)
	w.Add("/c", watchChild)
	w.Add("/d", watchChild)

	data, exist, child := w.Paths()
	sort.Strings(child)
	if len(data) != 1 || data[0] != "/a" {
		t.Fatalf("data paths = %v", data)
	}
	if len(exist) != 1 || exist[0] != "/b" {
		t.Fatalf("exist paths = %v", exist)
	}
	if len(child) != 2 || child[0] != "/c" || child[1] != "/d" {
		t.Fatalf("child paths = %v", child)
	}
}

func TestCloseAllDeliversTerminalEvent(t *testing.T) {
	w := newWatchRegistry()
	a := w.Add("/a", watchData)
	b := w.Add("/b", watchChild)

	w.CloseAll(Event{Type: proto.EventNone, State: proto.StateExpiredEvent, Err: ErrSessionExpired})
	for _, ch := range []<-chan Event{a, b} {
		ev, ok := <-ch
		if !ok || ev.State != proto.StateExpiredEvent {
			t.Fatalf("terminal event = %+v ok=%v", ev, ok)
		}
		if _, ok := <-ch; ok {
			t.Fatalf("channel should be closed")
		}
	}
	if w.Len() != 0 {
		t.Fatalf("registry not emptied")
	}
}
