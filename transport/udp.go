package transport

import (
	"log/slog"
	"net"
	"sync"
)

// udpDatagramBuffer is the fixed receive buffer size spec.md §6 mandates:
// the maximum theoretical UDP payload over IPv4. A datagram that exactly
// fills it may have been truncated by the kernel, so Read logs a warning
// in that case instead of silently returning a possibly-incomplete packet.
const udpDatagramBuffer = 65507

// UDP is a datagram transport over a "connected" UDP socket: one
// Fragment per receive, per spec.md §6 ("one UDP recv is one fragment").
type UDP struct {
	Descriptor NetDescriptor
	Logger     *slog.Logger

	mu   sync.Mutex
	conn *net.UDPConn
}

// NewUDP returns a UDP transport for descriptor, unopened.
func NewUDP(descriptor NetDescriptor) *UDP {
	d := descriptor
	d.Network = "udp"
	return &UDP{Descriptor: d}
}

func (u *UDP) logger() *slog.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return slog.Default()
}

func (u *UDP) Open() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn != nil {
		return nil
	}
	addr, err := net.ResolveUDPAddr("udp", u.Descriptor.addr())
	if err != nil {
		return err
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return err
	}
	u.conn = conn
	return nil
}

func (u *UDP) Close() error {
	u.mu.Lock()
	conn := u.conn
	u.conn = nil
	u.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (u *UDP) IsOpen() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.conn != nil
}

// Read performs one receive into a fixed udpDatagramBuffer-sized internal
// buffer, then copies up to len(buf) bytes out. A datagram that exactly
// fills the internal buffer may have been truncated by the kernel; that
// case is logged as a warning (spec.md §6) but still returned to the
// caller rather than treated as an error.
func (u *UDP) Read(buf []byte) (int, error) {
	u.mu.Lock()
	conn := u.conn
	u.mu.Unlock()
	if conn == nil {
		return 0, net.ErrClosed
	}
	internal := make([]byte, udpDatagramBuffer)
	n, err := conn.Read(internal)
	if err != nil {
		return 0, err
	}
	if n == udpDatagramBuffer {
		u.logger().Warn("syndesi/transport: UDP datagram exactly filled the receive buffer, possible truncation", "descriptor", u.Descriptor.String())
	}
	return copy(buf, internal[:n]), nil
}

func (u *UDP) Write(data []byte) (int, error) {
	u.mu.Lock()
	conn := u.conn
	u.mu.Unlock()
	if conn == nil {
		return 0, net.ErrClosed
	}
	return conn.Write(data)
}
