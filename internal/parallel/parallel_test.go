package parallel

import (
	"sync/atomic"
	"testing"
)

func TestRunCoversAllIndices(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 16} {
		p := New(workers)
		const n = 1000
		var counts [n]atomic.Int32
		p.Run(n, func(i int) {
			counts[i].Add(1)
		})
		for i := range counts {
			if got := counts[i].Load(); got != 1 {
				t.Fatalf("workers=%d: task %d ran %d times, want 1", workers, i, got)
			}
		}
	}
}

func TestRunNilPool(t *testing.T) {
	var p *Pool
	if got := p.Workers(); got != 1 {
		t.Errorf("nil pool Workers() = %d, want 1", got)
	}
	ran := 0
	last := -1
	p.Run(5, func(i int) {
		ran++
		if i <= last {
			t.Errorf("nil pool ran out of order: %d after %d", i, last)
		}
		last = i
	})
	if ran != 5 {
		t.Errorf("ran %d tasks, want 5", ran)
	}
}

func TestRunZeroTasks(t *testing.T) {
	p := New(4)
	p.Run(0, func(i int) {
		t.Error("task ran for n=0")
	})
	p.Run(-1, func(i int) {
		t.Error("task ran for n<0")
	})
}

func TestRunIsBarrier(t *testing.T) {
	// Every write made inside Run must be visible after it returns.
	p := New(8)
	data := make([]int, 500)
	p.Run(len(data), func(i int) {
		data[i] = i * i
	})
	for i, v := range data {
		if v != i*i {
			t.Fatalf("data[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	if got := New(0).Workers(); got < 1 {
		t.Errorf("New(0).Workers() = %d, want >= 1", got)
	}
	if got := New(-3).Workers(); got < 1 {
		t.Errorf("New(-3).Workers() = %d, want >= 1", got)
	}
	if got := New(3).Workers(); got != 3 {
		t.Errorf("New(3).Workers() = %d, want 3", got)
	}
}
