package publish

import "sync"

// message is one encoded audit event waiting for downstream delivery.
type message struct {
	key   string
	value []byte
}

// ringBuffer is a bounded, thread-safe buffer of pending messages. When full,
// the oldest messages are dropped to make room; audit fan-out is fire-and-
// forget and the postgres row is the durable copy.
type ringBuffer struct {
	mu       sync.Mutex
	messages []message
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int

	dropped int64
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &ringBuffer{
		messages: make([]message, capacity),
		capacity: capacity,
	}
}

// enqueue adds a message, dropping the oldest if necessary.
func (b *ringBuffer) enqueue(msg message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
	}

	b.messages[b.head] = msg
	b.head = (b.head + 1) % b.capacity
	b.count++
}

// dequeueBatch removes up to n messages.
func (b *ringBuffer) dequeueBatch(n int) []message {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}

	result := make([]message, n)
	for i := 0; i < n; i++ {
		result[i] = b.messages[b.tail]
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return result
}

func (b *ringBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// countDrop records a message lost outside the buffer (e.g. sink failure).
func (b *ringBuffer) countDrop() {
	b.mu.Lock()
	b.dropped++
	b.mu.Unlock()
}

func (b *ringBuffer) droppedCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
