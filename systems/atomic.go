package systems

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Float32 cells are accessed as uint32 bit patterns so concurrent agents can
// accumulate into shared grids without locks.

func cellBits(s []float32, i int) *uint32 {
	return (*uint32)(unsafe.Pointer(&s[i]))
}

func atomicLoadFloat32(s []float32, i int) float32 {
	return math.Float32frombits(atomic.LoadUint32(cellBits(s, i)))
}

func atomicStoreFloat32(s []float32, i int, v float32) {
	atomic.StoreUint32(cellBits(s, i), math.Float32bits(v))
}

func atomicAddFloat32(s []float32, i int, delta float32) {
	p := cellBits(s, i)
	for {
		old := atomic.LoadUint32(p)
		next := math.Float32bits(math.Float32frombits(old) + delta)
		if atomic.CompareAndSwapUint32(p, old, next) {
			return
		}
	}
}

// atomicTakeFloat32 removes up to want from the cell, never leaving it
// negative, and returns the amount removed.
func atomicTakeFloat32(s []float32, i int, want float32) float32 {
	p := cellBits(s, i)
	for {
		old := atomic.LoadUint32(p)
		have := math.Float32frombits(old)
		if !(have > 0) {
			return 0
		}
		take := want
		if take > have {
			take = have
		}
		if atomic.CompareAndSwapUint32(p, old, math.Float32bits(have-take)) {
			return take
		}
	}
}
