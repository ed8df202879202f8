package rfbencoder

import (
	"sync"

	"github.com/bigangryrobot/rfbencoder/internal/logger"
)

// workerPool is the shared producer/consumer state §4.4 describes: one
// mutex guarding a work queue, one ordered queue per Ordered codec, and
// an output queue the owner drains in the order items were pushed to it,
// which is the order encoding finished, not the order items were
// submitted; items routed to one Ordered codec are pushed in the order
// that codec encoded them. Workers wait on
// consumerCond when there's no work; the owner waits on producerCond
// during flush. The shape mirrors a sync.Cond-guarded wait-in-a-loop
// producer/consumer handoff, the same pattern a frame-delivery holder
// elsewhere in this stack uses for "wait until there's something new".
type workerPool struct {
	mu           sync.Mutex
	consumerCond *sync.Cond
	producerCond *sync.Cond

	workQueue    []*WorkItem
	orderedQueue map[CodecId][]*PreparedItem
	outputQueue  []*OutputItem
	rectCount    int
	stopping     bool

	codecs    map[CodecId]Codec
	analyzeFn func(*WorkItem) *PreparedItem
	encodeFn  func(*PreparedItem) (*OutputItem, error)

	wg sync.WaitGroup

	onCodecFailure func(error)
}

func newWorkerPool(n int, codecs map[CodecId]Codec, analyzeFn func(*WorkItem) *PreparedItem, encodeFn func(*PreparedItem) (*OutputItem, error), onCodecFailure func(error)) *workerPool {
	p := &workerPool{
		orderedQueue:   make(map[CodecId][]*PreparedItem),
		codecs:         codecs,
		analyzeFn:      analyzeFn,
		encodeFn:       encodeFn,
		onCodecFailure: onCodecFailure,
	}
	p.consumerCond = sync.NewCond(&p.mu)
	p.producerCond = sync.NewCond(&p.mu)
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.workerLoop()
	}
	return p
}

// submit enqueues item, incrementing rectCount so flush knows to keep
// waiting for its eventual OutputItem.
func (p *workerPool) submit(item *WorkItem) {
	p.mu.Lock()
	p.rectCount++
	p.workQueue = append(p.workQueue, item)
	p.mu.Unlock()
	p.consumerCond.Signal()
}

func (p *workerPool) workerLoop() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.workQueue) == 0 && !p.stopping {
			p.consumerCond.Wait()
		}
		if p.stopping && len(p.workQueue) == 0 {
			p.mu.Unlock()
			return
		}
		item := p.workQueue[0]
		p.workQueue = p.workQueue[1:]
		p.mu.Unlock()

		prepared := p.analyzeFn(item)

		codec := p.codecs[prepared.codec]
		if codec.Flags().Ordered() {
			p.handleOrdered(prepared)
			continue
		}

		out, err := p.encodeFn(prepared)
		if err != nil {
			p.onCodecFailure(err)
			p.finishRect()
			continue
		}
		p.pushOutput(out)
	}
}

// handleOrdered implements §4.4 step 4: append to the codec's ordered
// queue; only the worker that finds itself owning a size-1 queue (i.e.
// the first one waiting) drains it, and keeps draining until it's empty,
// so an Ordered codec is never touched by two goroutines concurrently.
// The head stays in the queue while it's being encoded; popping it and
// deciding whether to keep draining or relinquish ownership happen under
// the same lock acquisition, so there's never a window between "queue
// observed empty" and "head popped" for a concurrent arrival to slip
// through and elect itself a second owner.
func (p *workerPool) handleOrdered(item *PreparedItem) {
	p.mu.Lock()
	q := p.orderedQueue[item.codec]
	q = append(q, item)
	p.orderedQueue[item.codec] = q
	owner := len(q) == 1
	p.mu.Unlock()

	if !owner {
		return
	}

	head := item
	for {
		out, err := p.encodeFn(head)
		if err != nil {
			p.onCodecFailure(err)
			p.finishRect()
		} else {
			p.pushOutput(out)
		}

		p.mu.Lock()
		q := p.orderedQueue[item.codec][1:]
		p.orderedQueue[item.codec] = q
		if len(q) == 0 {
			p.mu.Unlock()
			return
		}
		head = q[0]
		p.mu.Unlock()
	}
}

func (p *workerPool) pushOutput(out *OutputItem) {
	p.mu.Lock()
	p.outputQueue = append(p.outputQueue, out)
	p.mu.Unlock()
	p.producerCond.Signal()
}

// finishRect accounts a rect that failed encoding (CodecFailure): it
// still leaves the queue bookkeeping, just with no OutputItem to show
// for it, so flush's rectCount contract still holds.
func (p *workerPool) finishRect() {
	p.mu.Lock()
	p.rectCount--
	p.mu.Unlock()
	p.producerCond.Signal()
}

// flush is the owner's drain loop (§4.4): wait for output, write it,
// decrement rectCount, repeat until rectCount reaches zero.
func (p *workerPool) flush(write func(*OutputItem)) {
	for {
		p.mu.Lock()
		for len(p.outputQueue) == 0 && p.rectCount > 0 {
			p.producerCond.Wait()
		}
		if p.rectCount == 0 && len(p.outputQueue) == 0 {
			p.mu.Unlock()
			return
		}
		item := p.outputQueue[0]
		p.outputQueue = p.outputQueue[1:]
		p.mu.Unlock()

		write(item)

		p.mu.Lock()
		p.rectCount--
		p.mu.Unlock()
	}
}

// checkDrained is the InternalInvariant check of testable property 4:
// after flush returns, every queue must be empty and rectCount zero.
func (p *workerPool) checkDrained() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.workQueue) != 0 || len(p.outputQueue) != 0 || p.rectCount != 0 {
		logger.Fatalf("worker pool: queues not drained after flush (work=%d output=%d rectCount=%d)",
			len(p.workQueue), len(p.outputQueue), p.rectCount)
	}
	for id, q := range p.orderedQueue {
		if len(q) != 0 {
			logger.Fatalf("worker pool: ordered queue %s not drained after flush (%d pending)", id, len(q))
		}
	}
}

// shutdown sets stopping, wakes every worker and waits for all of them to
// exit. A worker exits only once the work queue is empty and any ordered
// queue it owns is drained, so queued work is finished, not dropped.
func (p *workerPool) shutdown() {
	p.mu.Lock()
	p.stopping = true
	p.mu.Unlock()
	p.consumerCond.Broadcast()
	p.wg.Wait()
}
