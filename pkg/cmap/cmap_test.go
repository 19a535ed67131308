package cmap

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestMap_SetGet(t *testing.T) {
	m := New[string, int]()

	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3)

	if v, ok := m.Get("a"); !ok || v != 3 {
		t.Errorf("Get(a) = %d, %v, want 3, true", v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) ok = true")
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
}

func TestMap_Pop(t *testing.T) {
	m := New[string, string]()
	m.Set("conn", "value")

	v, ok := m.Pop("conn")
	if !ok || v != "value" {
		t.Fatalf("Pop() = %q, %v", v, ok)
	}
	if _, ok := m.Pop("conn"); ok {
		t.Error("second Pop() ok = true")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestMap_PopOnce(t *testing.T) {
	m := New[string, int]()
	m.Set("k", 1)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := m.Pop("k"); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("successful pops = %d, want 1", wins.Load())
	}
}

func TestMap_Range(t *testing.T) {
	m := NewWithShards[string, int](4)
	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	sum := 0
	m.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	if sum != 4950 {
		t.Errorf("sum = %d, want 4950", sum)
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return visited < 10
	})
	if visited != 10 {
		t.Errorf("visited = %d, want 10", visited)
	}
}

func TestMap_RangeMayMutate(t *testing.T) {
	m := New[string, int]()
	for i := 0; i < 50; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	m.Range(func(k string, _ int) bool {
		m.Pop(k)
		return true
	})
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestNewWithShards_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -1, 3, 100} {
		m := NewWithShards[string, int](n)
		if len(m.shards) != DefaultShardCount {
			t.Errorf("NewWithShards(%d) shards = %d, want %d", n, len(m.shards), DefaultShardCount)
		}
	}
	if m := NewWithShards[string, int](8); len(m.shards) != 8 {
		t.Errorf("NewWithShards(8) shards = %d", len(m.shards))
	}
}

type connID string

func TestMap_NamedKeyType(t *testing.T) {
	m := New[connID, bool]()
	m.Set(connID("01J"), true)
	if m.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", m.Count())
	}
	if _, ok := m.Get("01J"); !ok {
		t.Error("Get() on named key type failed")
	}
}

func TestMap_Concurrent(t *testing.T) {
	m := New[string, int]()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("%d-%d", g, i)
				m.Set(key, i)
				if i%2 == 0 {
					m.Pop(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if m.Count() != 8*100 {
		t.Errorf("Count() = %d, want 800", m.Count())
	}
}
