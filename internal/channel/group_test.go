package channel

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// fakeHandle is a test implementation of Handle backed by a stored value.
type fakeHandle struct {
	mu        sync.Mutex
	id        string
	value     any
	writable  bool
	connected bool
}

func newFakeHandle(id string, value any) *fakeHandle {
	return &fakeHandle{id: id, value: value, writable: true, connected: true}
}

func (f *fakeHandle) ID() string { return f.id }

func (f *fakeHandle) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeHandle) Get() (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return nil, fmt.Errorf("%s: %w", f.id, ErrDisconnected)
	}
	return f.value, nil
}

func (f *fakeHandle) Put(value any) (*WriteHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return nil, fmt.Errorf("%s: %w", f.id, ErrDisconnected)
	}
	if !f.writable {
		return nil, fmt.Errorf("%s: %w", f.id, ErrNotWritable)
	}
	f.value = value
	return NewWriteHandle(f.id, value), nil
}

func TestNewGroup(t *testing.T) {
	t.Run("rejects empty group", func(t *testing.T) {
		_, err := NewGroup()
		if !errors.Is(err, ErrEmptyGroup) {
			t.Errorf("NewGroup() error = %v, want ErrEmptyGroup", err)
		}
	})

	t.Run("key is ordered member identifiers", func(t *testing.T) {
		g, err := NewGroup(newFakeHandle("XF:Det:SizeX", 0), newFakeHandle("XF:Det:SizeY", 0))
		if err != nil {
			t.Fatalf("NewGroup() error = %v", err)
		}
		if g.Key() != "XF:Det:SizeX|XF:Det:SizeY" {
			t.Errorf("Key() = %q, want %q", g.Key(), "XF:Det:SizeX|XF:Det:SizeY")
		}
	})

	t.Run("member order changes key", func(t *testing.T) {
		a := newFakeHandle("a", 0)
		b := newFakeHandle("b", 0)
		g1, _ := NewGroup(a, b)
		g2, _ := NewGroup(b, a)
		if g1.Key() == g2.Key() {
			t.Errorf("keys should differ for different member order, both %q", g1.Key())
		}
	})
}

func TestGroup_Get(t *testing.T) {
	a := newFakeHandle("ch-a", 1)
	b := newFakeHandle("ch-b", 2)
	g, err := NewGroup(a, b)
	if err != nil {
		t.Fatalf("NewGroup() error = %v", err)
	}

	t.Run("returns values in composition order", func(t *testing.T) {
		values, err := g.Get()
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(values) != 2 || values[0] != 1 || values[1] != 2 {
			t.Errorf("Get() = %v, want [1 2]", values)
		}
	})

	t.Run("names disconnected member", func(t *testing.T) {
		b.connected = false
		defer func() { b.connected = true }()

		_, err := g.Get()
		if !errors.Is(err, ErrDisconnected) {
			t.Fatalf("Get() error = %v, want ErrDisconnected", err)
		}
		if !strings.Contains(err.Error(), "ch-b") {
			t.Errorf("error %q does not name member identifier ch-b", err)
		}
	})
}

func TestGroup_Put(t *testing.T) {
	a := newFakeHandle("ch-a", 0)
	b := newFakeHandle("ch-b", 0)
	g, err := NewGroup(a, b)
	if err != nil {
		t.Fatalf("NewGroup() error = %v", err)
	}

	t.Run("fans single value out to all members", func(t *testing.T) {
		handles, err := g.Put(5)
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if len(handles) != 2 {
			t.Fatalf("Put() returned %d handles, want 2", len(handles))
		}
		if a.value != 5 || b.value != 5 {
			t.Errorf("member values = %v, %v, want 5, 5", a.value, b.value)
		}
	})

	t.Run("PutEach writes per-member values", func(t *testing.T) {
		handles, err := g.PutEach([]any{10, 20})
		if err != nil {
			t.Fatalf("PutEach() error = %v", err)
		}
		if len(handles) != 2 {
			t.Fatalf("PutEach() returned %d handles, want 2", len(handles))
		}
		if a.value != 10 || b.value != 20 {
			t.Errorf("member values = %v, %v, want 10, 20", a.value, b.value)
		}
	})

	t.Run("PutEach rejects arity mismatch", func(t *testing.T) {
		_, err := g.PutEach([]any{1})
		if !errors.Is(err, ErrGroupArity) {
			t.Errorf("PutEach() error = %v, want ErrGroupArity", err)
		}
	})

	t.Run("read-only member surfaces ErrNotWritable", func(t *testing.T) {
		b.writable = false
		defer func() { b.writable = true }()

		_, err := g.Put(1)
		if !errors.Is(err, ErrNotWritable) {
			t.Errorf("Put() error = %v, want ErrNotWritable", err)
		}
	})
}

func TestGroup_Connected(t *testing.T) {
	a := newFakeHandle("ch-a", 0)
	b := newFakeHandle("ch-b", 0)
	g, err := NewGroup(a, b)
	if err != nil {
		t.Fatalf("NewGroup() error = %v", err)
	}

	if !g.Connected() {
		t.Error("Connected() = false with all members connected")
	}

	a.connected = false
	if g.Connected() {
		t.Error("Connected() = true with a disconnected member")
	}
}

func TestNewWriteHandle(t *testing.T) {
	wh := NewWriteHandle("XF:Mtr.VAL", 1.5)
	if wh.ID == "" {
		t.Error("write handle ID was not generated")
	}
	if wh.Channel != "XF:Mtr.VAL" {
		t.Errorf("Channel = %q, want %q", wh.Channel, "XF:Mtr.VAL")
	}
	if wh.IssuedAt.IsZero() {
		t.Error("IssuedAt was not set")
	}
}

func TestConfig_ReadbackID(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		id   string
		want string
	}{
		{"default suffix", Config{HasReadback: true}, "XF:Det:Gain", "XF:Det:Gain_RBV"},
		{"suffix override", Config{HasReadback: true, ReadbackSuffix: ".RBV"}, "XF:Mtr", "XF:Mtr.RBV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ReadbackID(tt.id); got != tt.want {
				t.Errorf("ReadbackID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}
