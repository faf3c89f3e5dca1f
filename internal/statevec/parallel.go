package statevec

import (
	"runtime"
	"sync"
)

// parallelThreshold is the vector length from which kernels fan out.
const parallelThreshold = 1 << 14

// forEachPair calls fn(i, i|bit) for every index i with bit clear. Pairs are
// disjoint, so shards need no synchronisation beyond the final Wait.
func forEachPair(n, bit int, fn func(i, j int)) {
	low := bit - 1
	pair := func(k int) {
		i := (k&^low)<<1 | k&low
		fn(i, i|bit)
	}
	shard(n/2, n, pair)
}

// forEachIndex calls fn for every basis index.
func forEachIndex(n int, fn func(i int)) {
	shard(n, n, fn)
}

func shard(count, size int, fn func(k int)) {
	workers := runtime.GOMAXPROCS(0)
	if size < parallelThreshold || workers < 2 {
		for k := range count {
			fn(k)
		}
		return
	}

	chunk := (count + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < count; start += chunk {
		end := min(start+chunk, count)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := start; k < end; k++ {
				fn(k)
			}
		}()
	}
	wg.Wait()
}
