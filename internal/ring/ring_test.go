package ring

import "testing"

func TestBufferEviction(t *testing.T) {
	b := New[int](3)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}
	if b.Len() != 3 {
		t.Fatalf("len = %d, want 3", b.Len())
	}
	got := b.Items()
	want := []int{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("items[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBufferLast(t *testing.T) {
	b := New[string](2)
	if _, ok := b.Last(); ok {
		t.Error("Last on empty buffer reported ok")
	}
	b.Push("a")
	b.Push("b")
	if v, ok := b.Last(); !ok || v != "b" {
		t.Errorf("Last = %q/%v, want b/true", v, ok)
	}
}

func TestBufferClear(t *testing.T) {
	b := New[int](4)
	b.Push(1)
	b.Push(2)
	b.Clear()
	if b.Len() != 0 || b.Cap() != 4 {
		t.Errorf("after Clear: len=%d cap=%d, want 0/4", b.Len(), b.Cap())
	}
	b.Push(9)
	if v, _ := b.Last(); v != 9 {
		t.Errorf("push after clear: last=%d, want 9", v)
	}
}

func TestBufferItemsIsCopy(t *testing.T) {
	b := New[int](2)
	b.Push(1)
	items := b.Items()
	items[0] = 42
	if b.At(0) != 1 {
		t.Error("Items returned a view into internal storage")
	}
}
