package profiling

import (
	"slices"
	"sync"
	"testing"
)

func TestCreateDestroy(t *testing.T) {
	t.Cleanup(func() { Destroy() })

	if !Create() {
		t.Fatal("first Create() = false, want true")
	}
	if Create() {
		t.Error("second Create() = true, want false")
	}
	if Default() == nil {
		t.Error("Default() = nil after Create")
	}
	if !Destroy() {
		t.Error("first Destroy() = false, want true")
	}
	if Destroy() {
		t.Error("second Destroy() = true, want false")
	}
	if Default() != nil {
		t.Error("Default() != nil after Destroy")
	}
}

func TestRegisterCounter(t *testing.T) {
	c := NewCounters()

	if _, ok := c.Query("test"); ok {
		t.Error("Query of an unregistered counter succeeded")
	}
	if !c.Register("test") {
		t.Error("Register() = false, want true")
	}
	if c.Register("test") {
		t.Error("duplicate Register() = true, want false")
	}
	if v, ok := c.Query("test"); !ok || v != 0 {
		t.Errorf("Query() = %d, %v, want 0, true", v, ok)
	}
	if !c.Unregister("test") {
		t.Error("Unregister() = false, want true")
	}
	if c.Unregister("test") {
		t.Error("second Unregister() = true, want false")
	}
}

func TestAddSetReset(t *testing.T) {
	c := NewCounters()
	c.Register("draws")
	c.Register("binds")

	c.Add("draws", 3)
	c.Add("draws", 2)
	c.Add("missing", 7)
	c.Set("binds", 9)

	if v, _ := c.Query("draws"); v != 5 {
		t.Errorf("draws = %d, want 5", v)
	}
	if _, ok := c.Query("missing"); ok {
		t.Error("Add registered a missing counter")
	}
	if got := c.Snapshot(); got["binds"] != 9 || len(got) != 2 {
		t.Errorf("Snapshot() = %v", got)
	}
	if got := c.Names(); !slices.Equal(got, []string{"binds", "draws"}) {
		t.Errorf("Names() = %v, want [binds draws]", got)
	}

	c.Reset()
	if v, ok := c.Query("draws"); !ok || v != 0 {
		t.Errorf("after Reset draws = %d, %v, want 0, true", v, ok)
	}
}

func TestConcurrentAdd(t *testing.T) {
	c := NewCounters()
	c.Register("n")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				c.Add("n", 1)
			}
		}()
	}
	wg.Wait()
	if v, _ := c.Query("n"); v != 8000 {
		t.Errorf("n = %d, want 8000", v)
	}
}
