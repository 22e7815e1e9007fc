package joycon

import "sync"

// outQueue is a bounded ring of pending output frames drained by the
// controller's single writer goroutine. Producers never block: a full ring
// either drops the frame (droppable writes) or returns ErrQueueFull for the
// caller to handle. The short lock here covers only head/tail updates,
// never I/O.
type outQueue struct {
	mu    sync.Mutex
	slots [][]byte
	head  int
	count int
	kick  chan struct{}
}

func newOutQueue(capacity int) *outQueue {
	return &outQueue{
		slots: make([][]byte, capacity),
		kick:  make(chan struct{}, 1),
	}
}

// push enqueues a frame. Returns ErrQueueFull when the ring is at capacity.
func (q *outQueue) push(frame []byte) error {
	q.mu.Lock()
	if q.count == len(q.slots) {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.slots[(q.head+q.count)%len(q.slots)] = frame
	q.count++
	q.mu.Unlock()

	select {
	case q.kick <- struct{}{}:
	default:
	}
	return nil
}

// pop dequeues the oldest frame, or nil when empty.
func (q *outQueue) pop() []byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return nil
	}
	frame := q.slots[q.head]
	q.slots[q.head] = nil
	q.head = (q.head + 1) % len(q.slots)
	q.count--
	return frame
}

func (q *outQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// flush discards everything pending.
func (q *outQueue) flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.slots {
		q.slots[i] = nil
	}
	q.head = 0
	q.count = 0
}
