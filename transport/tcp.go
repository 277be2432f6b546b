package transport

import (
	"net"
	"sync"
	"time"
)

// TCP is a stream transport over a TCP socket. Grounded on the teacher's
// own NewTCPConn (tcp.go): KeepAlive and no-delay are enabled the same way,
// translated from "wrap an already-dialed net.Conn" into "dial lazily on
// Open", since syndesi opens transports lazily rather than eagerly at
// construction.
type TCP struct {
	Descriptor  NetDescriptor
	OpenTimeout time.Duration
	KeepAlive   time.Duration // 0 disables KeepAlive override (OS default)

	mu   sync.Mutex
	conn net.Conn
}

// NewTCP returns a TCP transport for descriptor, unopened.
func NewTCP(descriptor NetDescriptor) *TCP {
	d := descriptor
	d.Network = "tcp"
	return &TCP{Descriptor: d, OpenTimeout: DefaultOpenTimeout, KeepAlive: 30 * time.Second}
}

func (t *TCP) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", t.Descriptor.addr(), t.OpenTimeout)
	if err != nil {
		return err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
		if t.KeepAlive > 0 {
			_ = tc.SetKeepAlive(true)
			_ = tc.SetKeepAlivePeriod(t.KeepAlive)
		}
	}
	t.conn = conn
	return nil
}

func (t *TCP) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (t *TCP) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Read blocks on the underlying connection's Read. It is safe to call
// concurrently with Close: a Close in flight unblocks a pending Read with
// an error, which the worker's reader goroutine reports as a disconnect.
func (t *TCP) Read(buf []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, net.ErrClosed
	}
	return conn.Read(buf)
}

func (t *TCP) Write(data []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, net.ErrClosed
	}
	return conn.Write(data)
}
