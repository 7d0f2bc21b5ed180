package hid

import (
	"sync"
	"time"
)

// MockDevice is an in-memory Device for tests. Reads pop from the Reads
// queue; an empty queue behaves like a read timeout.
type MockDevice struct {
	mu     sync.Mutex
	writes [][]byte
	closed bool

	// Reads is the queue of input reports returned by ReadWithTimeout.
	Reads [][]byte
	// WriteFunc, when set, is consulted before each write with the
	// zero-based index of the write; a non-nil error fails the write.
	WriteFunc func(index int, p []byte) error
	// CloseFunc, when set, runs on every Close.
	CloseFunc func()
}

func (m *MockDevice) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteFunc != nil {
		if err := m.WriteFunc(len(m.writes), p); err != nil {
			return 0, err
		}
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	m.writes = append(m.writes, cp)
	return len(p), nil
}

func (m *MockDevice) ReadWithTimeout(p []byte, _ time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Reads) == 0 {
		return 0, nil
	}
	report := m.Reads[0]
	m.Reads = m.Reads[1:]
	return copy(p, report), nil
}

func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.CloseFunc != nil {
		m.CloseFunc()
	}
	return nil
}

// Writes returns a snapshot of everything written so far.
func (m *MockDevice) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

func (m *MockDevice) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockBackend is an in-memory Backend for tests.
type MockBackend struct {
	mu    sync.Mutex
	opens []string

	// Infos is what Enumerate reports, filtered by vendor/product.
	Infos []Info
	// OpenFunc, when set, handles Open. Otherwise Open returns a fresh
	// MockDevice.
	OpenFunc func(path string) (Device, error)
}

func (b *MockBackend) Enumerate(vendorID, productID uint16) ([]Info, error) {
	var out []Info
	for _, info := range b.Infos {
		if vendorID != 0 && info.VendorID != vendorID {
			continue
		}
		if productID != 0 && info.ProductID != productID {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

func (b *MockBackend) Open(path string) (Device, error) {
	b.mu.Lock()
	b.opens = append(b.opens, path)
	b.mu.Unlock()
	if b.OpenFunc != nil {
		return b.OpenFunc(path)
	}
	return &MockDevice{}, nil
}

// Opens returns the paths passed to Open, in order.
func (b *MockBackend) Opens() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.opens))
	copy(out, b.opens)
	return out
}
