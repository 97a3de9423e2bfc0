package sim

import (
	"fmt"
	"runtime"
	"sync"
)

// defaultParallelThreshold is the minimum work item count to use the pool.
// Below this, running inline is faster than dispatching.
const defaultParallelThreshold = 64

// chunkFunc processes work items [start, end) on the given worker.
type chunkFunc func(start, end, worker int)

// workChunk represents a range of work items for a worker to process.
type workChunk struct {
	start, end int
	fn         chunkFunc
}

// workerPool runs parallel-for loops on persistent worker goroutines.
// Each parallelFor call is a barrier: it returns once every chunk is done.
type workerPool struct {
	numWorkers int
	threshold  int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
	closed   bool // set by shutdown; the pool never restarts

	panicMu  sync.Mutex
	panicErr error
}

func newWorkerPool(workers, threshold int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if threshold <= 0 {
		threshold = defaultParallelThreshold
	}
	return &workerPool{numWorkers: workers, threshold: threshold}
}

// start launches persistent worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// shutdown stops the workers for good. Later parallelFor calls fail with
// ErrClosed instead of restarting the pool.
func (p *workerPool) shutdown() {
	p.closed = true
	p.stop()
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *workerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.run(chunk, id)
			p.doneChan <- struct{}{}
		}
	}
}

// run executes a chunk, converting a panic into a recorded failure.
func (p *workerPool) run(chunk workChunk, worker int) {
	defer func() {
		if r := recover(); r != nil {
			p.recordPanic(r)
		}
	}()
	chunk.fn(chunk.start, chunk.end, worker)
}

func (p *workerPool) recordPanic(r any) {
	p.panicMu.Lock()
	defer p.panicMu.Unlock()
	if p.panicErr != nil {
		return
	}
	if err, ok := r.(error); ok {
		p.panicErr = fmt.Errorf("worker panic: %w", err)
	} else {
		p.panicErr = fmt.Errorf("worker panic: %v", r)
	}
}

func (p *workerPool) takePanic() error {
	p.panicMu.Lock()
	defer p.panicMu.Unlock()
	err := p.panicErr
	p.panicErr = nil
	return err
}

// parallelFor runs fn over [0, n), inline for small n, otherwise split into
// one chunk per worker. It returns an error if any chunk panicked.
func (p *workerPool) parallelFor(n int, fn chunkFunc) error {
	if p.closed {
		return ErrClosed
	}
	if n <= 0 {
		return nil
	}
	if n < p.threshold || p.numWorkers == 1 {
		p.run(workChunk{start: 0, end: n, fn: fn}, 0)
		return p.takePanic()
	}

	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
	return p.takePanic()
}
