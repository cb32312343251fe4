package reporting

import (
	"fmt"
	"os"
	"sync"
)

// AsyncFile is a file written through a buffered background queue so event
// callbacks never block on disk. Close drains the queue before returning.
type AsyncFile struct {
	file  *os.File
	queue chan []byte

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewAsyncFile creates path, truncating any existing file, and starts the
// background writer.
func NewAsyncFile(path string) (*AsyncFile, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}

	af := &AsyncFile{
		file:  file,
		queue: make(chan []byte, 128),
	}
	af.wg.Add(1)
	go af.drain()
	return af, nil
}

// Name returns the path of the underlying file.
func (af *AsyncFile) Name() string {
	return af.file.Name()
}

// Write queues data for the background writer. The slice is copied, so the
// caller may reuse it immediately.
func (af *AsyncFile) Write(data []byte) error {
	af.mu.Lock()
	defer af.mu.Unlock()
	if af.closed {
		return fmt.Errorf("write to closed file %s", af.file.Name())
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	af.queue <- buf
	return nil
}

// WriteString queues a string for the background writer.
func (af *AsyncFile) WriteString(s string) error {
	return af.Write([]byte(s))
}

func (af *AsyncFile) drain() {
	defer af.wg.Done()
	for data := range af.queue {
		if _, err := af.file.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", af.file.Name(), err)
		}
	}
}

// Close stops accepting writes, waits for the queue to drain, and closes
// the file.
func (af *AsyncFile) Close() error {
	af.mu.Lock()
	if !af.closed {
		af.closed = true
		close(af.queue)
	}
	af.mu.Unlock()

	af.wg.Wait()
	return af.file.Close()
}
