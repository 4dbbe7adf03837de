package trace

import (
	"errors"
	"sync"

	"github.com/rv32im/rvtrace/rvgo/vm"
)

var (
	ErrQueueFull   = errors.New("trace queue full")
	ErrQueueEmpty  = errors.New("trace queue empty")
	ErrQueueClosed = errors.New("trace queue closed")
)

// Queue is a fixed-capacity FIFO of trace records.
// Put blocks while the queue is full, TryPut fails instead.
type Queue struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	buf      []vm.TraceRecord
	readPos  int
	writePos int
	fill     int
	closed   bool
}

// Status is a snapshot of the queue occupancy, in records.
type Status struct {
	Size int
	Fill int
	Free int
}

func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue{buf: make([]vm.TraceRecord, capacity)}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

func (q *Queue) push(rec vm.TraceRecord) {
	q.buf[q.writePos] = rec
	q.writePos = (q.writePos + 1) % len(q.buf)
	q.fill++
	q.notEmpty.Signal()
}

func (q *Queue) pop() vm.TraceRecord {
	rec := q.buf[q.readPos]
	q.readPos = (q.readPos + 1) % len(q.buf)
	q.fill--
	q.notFull.Signal()
	return rec
}

// Put appends rec, waiting for room. It fails once the queue is closed.
func (q *Queue) Put(rec vm.TraceRecord) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.fill == len(q.buf) && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		return ErrQueueClosed
	}
	q.push(rec)
	return nil
}

// TryPut appends rec, or returns ErrQueueFull without waiting.
func (q *Queue) TryPut(rec vm.TraceRecord) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if q.fill == len(q.buf) {
		return ErrQueueFull
	}
	q.push(rec)
	return nil
}

// Get removes the oldest record, waiting for one to arrive.
// ok is false once the queue is closed and drained.
func (q *Queue) Get() (rec vm.TraceRecord, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.fill == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if q.fill == 0 {
		return vm.TraceRecord{}, false
	}
	return q.pop(), true
}

// TryGet removes the oldest record, or returns ErrQueueEmpty without waiting.
func (q *Queue) TryGet() (vm.TraceRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fill == 0 {
		return vm.TraceRecord{}, ErrQueueEmpty
	}
	return q.pop(), nil
}

// Close wakes all waiters. Records already queued can still be read.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fill = 0
	q.readPos = 0
	q.writePos = 0
	q.notFull.Broadcast()
}

func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Status{Size: len(q.buf), Fill: q.fill, Free: len(q.buf) - q.fill}
}

// SinkFunc adapts a function to vm.TraceSink.
type SinkFunc func(rec vm.TraceRecord) error

func (f SinkFunc) Put(rec vm.TraceRecord) error {
	return f(rec)
}

var _ vm.TraceSink = (*Queue)(nil)
var _ vm.TraceSink = SinkFunc(nil)
