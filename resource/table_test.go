package resource

import (
	"testing"
	"time"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h := table.Insert(1, "test")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}
	if table.Len() != 1 {
		t.Fatalf("Expected Len() == 1, got %d", table.Len())
	}

	val, ok := table.Remove(h)
	if !ok {
		t.Fatal("Remove failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
	if _, ok := table.Borrow(h, 1); ok {
		t.Fatal("Borrow after Remove should fail")
	}
}

func TestTable_BorrowTyped(t *testing.T) {
	table := NewTable()
	h := table.Insert(1, "ctx")

	if _, ok := table.Borrow(h, 2); ok {
		t.Fatal("Borrow with wrong type should fail")
	}

	v, ok := table.Borrow(h, 1)
	if !ok || v != "ctx" {
		t.Fatalf("Borrow = %v, %v", v, ok)
	}
	if !table.ReturnBorrow(h) {
		t.Fatal("ReturnBorrow failed")
	}

	// Remove blocks on pinned entries, so a failed Borrow must leave none.
	done := make(chan struct{})
	go func() {
		table.Remove(h)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Remove blocked: a borrow was left outstanding")
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert(1, "test")
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventCreated {
		t.Fatal("Expected EventCreated")
	}
	if obs.events[0].Handle != h {
		t.Fatal("Wrong handle in event")
	}

	table.Remove(h)
	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if obs.events[1].Type != EventDropped {
		t.Fatal("Expected EventDropped")
	}
	if obs.events[1].TypeID != 1 {
		t.Fatalf("Expected TypeID 1, got %d", obs.events[1].TypeID)
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable()

	table.Insert(1, "a")
	table.Insert(1, "b")

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if h := table.Insert(1, "c"); h != 0 {
		t.Fatal("Expected Insert to fail after Close")
	}
}

type dropCounter struct {
	count int
}

func (d *dropCounter) Drop() {
	d.count++
}

func TestTable_DropperInterface(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}

	h := table.Insert(1, d)
	table.Remove(h)
	table.Remove(h)

	if d.count != 1 {
		t.Fatalf("Expected Drop() to be called once, called %d times", d.count)
	}
}

type dropRecorder struct {
	dropped chan struct{}
}

func (d *dropRecorder) Drop() {
	close(d.dropped)
}

func TestTable_CloseWaitsForBorrows(t *testing.T) {
	table := NewTable()
	d := &dropRecorder{dropped: make(chan struct{})}

	h := table.Insert(1, d)
	if _, ok := table.Borrow(h, 1); !ok {
		t.Fatal("Borrow failed")
	}

	closed := make(chan struct{})
	go func() {
		table.Close()
		close(closed)
	}()

	select {
	case <-d.dropped:
		t.Fatal("Drop ran while the value was borrowed")
	case <-closed:
		t.Fatal("Close returned while the value was borrowed")
	case <-time.After(50 * time.Millisecond):
	}

	table.ReturnBorrow(h)

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not complete after the borrow was returned")
	}
	select {
	case <-d.dropped:
	default:
		t.Fatal("Close should drop remaining values")
	}
	if table.Len() != 0 {
		t.Fatalf("Expected Len() == 0 after Close, got %d", table.Len())
	}
}
