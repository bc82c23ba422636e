package cache

import (
	"testing"

	"github.com/CrestNiraj12/hntui/domain"
)

func TestItemCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewItemCache(3)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	for _, id := range []int64{1, 2, 3} {
		c.Put(id, domain.Item{ID: id})
	}

	// Touch 1 so 2 becomes the oldest.
	if _, ok := c.Get(1); !ok {
		t.Fatalf("expected hit for 1")
	}
	c.Put(4, domain.Item{ID: 4})
	if c.Contains(2) {
		t.Fatalf("2 should have been evicted")
	}

	// Re-putting 3 refreshes it, so 1 goes next.
	c.Put(3, domain.Item{ID: 3})
	c.Put(5, domain.Item{ID: 5})
	if c.Contains(1) {
		t.Fatalf("1 should have been evicted")
	}
	for _, id := range []int64{3, 4, 5} {
		if !c.Contains(id) {
			t.Fatalf("expected %d to remain", id)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
}

func TestItemCache_ReturnsCopies(t *testing.T) {
	c, _ := NewItemCache(2)
	c.Put(1, domain.Item{ID: 1, Kids: []int64{10}})
	got, _ := c.Get(1)
	got.Kids[0] = 99
	again, _ := c.Get(1)
	if again.Kids[0] != 10 {
		t.Fatalf("cached item mutated through returned copy")
	}
}

func TestNewItemCache_RejectsNonPositive(t *testing.T) {
	if _, err := NewItemCache(0); err == nil {
		t.Fatalf("expected error for zero size")
	}
}
