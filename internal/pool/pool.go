// Package pool provides bucketed sync.Pool byte buffers for the plane
// serialization path, where every encode/decode needs a scratch buffer
// roughly the size of the sample data.
package pool

import "sync"

// Size classes for bucketed pools.
const (
	Size4K  = 4096
	Size64K = 65536
	Size1M  = 1 << 20
	Size16M = 1 << 24
)

var sizes = [4]int{Size4K, Size64K, Size1M, Size16M}

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size4K:
		return 0
	case size <= Size64K:
		return 1
	case size <= Size1M:
		return 2
	default:
		return 3
	}
}

var pools [4]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a byte slice of at least the requested size from the
// pool. The returned slice has length == size and may have a larger
// capacity. The caller must call Put when done.
func Get(size int) []byte {
	bp := pools[bucketIndex(size)].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
		*bp = b
		return b
	}
	return b[:size]
}

// Put returns a byte slice to the pool. The slice must have been
// obtained from Get, though it may have grown through append since; it
// is bucketed by its current capacity.
func Put(b []byte) {
	c := cap(b)
	if c < Size4K {
		return
	}
	b = b[:c]
	pools[bucketIndex(c)].Put(&b)
}
