//go:build linux

package transport

import (
	"fmt"
	"sync"

	goserial "github.com/daedaluz/goserial"
)

var baudRates = map[int]goserial.CFlag{
	50: goserial.B50, 75: goserial.B75, 110: goserial.B110, 134: goserial.B134,
	150: goserial.B150, 200: goserial.B200, 300: goserial.B300, 600: goserial.B600,
	1200: goserial.B1200, 1800: goserial.B1800, 2400: goserial.B2400, 4800: goserial.B4800,
	9600: goserial.B9600, 19200: goserial.B19200, 38400: goserial.B38400,
	57600: goserial.B57600, 115200: goserial.B115200, 230400: goserial.B230400,
	460800: goserial.B460800, 921600: goserial.B921600, 1000000: goserial.B1000000,
}

var dataBits = map[int]goserial.CFlag{
	5: goserial.CS5, 6: goserial.CS6, 7: goserial.CS7, 8: goserial.CS8,
}

// Serial is a byte-stream transport over a POSIX serial port, built on
// github.com/daedaluz/goserial (the pack's real fetchable serial library;
// the teacher's own github.com/rolfl/modbus/serial is an unshipped private
// subpackage and was not usable — see DESIGN.md).
//
// Flow control is fixed at Open time, per spec.md §6 ("changing it cycles
// the port"): SetFlowControl closes and reopens the port with the new
// setting rather than adjusting it on a live file descriptor.
type Serial struct {
	Descriptor SerialDescriptor

	mu   sync.Mutex
	port *goserial.Port
}

// NewSerial returns a Serial transport for descriptor, unopened.
func NewSerial(descriptor SerialDescriptor) *Serial {
	return &Serial{Descriptor: descriptor}
}

func (s *Serial) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return nil
	}
	port, err := goserial.Open(s.Descriptor.Device, goserial.NewOptions())
	if err != nil {
		return err
	}
	if err := s.configure(port); err != nil {
		_ = port.Close()
		return err
	}
	s.port = port
	return nil
}

func (s *Serial) configure(port *goserial.Port) error {
	baud, ok := baudRates[s.Descriptor.BaudRate]
	if !ok {
		return fmt.Errorf("syndesi/transport: unsupported baud rate %d", s.Descriptor.BaudRate)
	}
	size, ok := dataBits[s.Descriptor.DataBits]
	if !ok {
		size = goserial.CS8
	}

	attrs, err := port.GetAttr2()
	if err != nil {
		return err
	}
	attrs.MakeRaw()
	attrs.Cflag &^= goserial.CSIZE | goserial.CSTOPB | goserial.PARENB | goserial.PARODD | goserial.CRTSCTS
	attrs.Cflag |= size | goserial.CREAD | goserial.CLOCAL

	if s.Descriptor.StopBits == 2 {
		attrs.Cflag |= goserial.CSTOPB
	}
	switch s.Descriptor.Parity {
	case ParityEven:
		attrs.Cflag |= goserial.PARENB
	case ParityOdd:
		attrs.Cflag |= goserial.PARENB | goserial.PARODD
	}
	if s.Descriptor.RTSCTS {
		attrs.Cflag |= goserial.CRTSCTS
	}
	attrs.SetSpeed(baud)

	return port.SetAttr2(goserial.TCSANOW, attrs)
}

// SetFlowControl closes and reopens the port with RTSCTS set to enabled,
// per spec.md §6.
func (s *Serial) SetFlowControl(enabled bool) error {
	s.mu.Lock()
	wasOpen := s.port != nil
	s.mu.Unlock()

	if wasOpen {
		if err := s.Close(); err != nil {
			return err
		}
	}
	s.Descriptor.RTSCTS = enabled
	if wasOpen {
		return s.Open()
	}
	return nil
}

func (s *Serial) Close() error {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.mu.Unlock()
	if port == nil {
		return nil
	}
	return port.Close()
}

func (s *Serial) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}

// Read blocks on the underlying file descriptor. goserial's default
// Options leave ReadTimeout at -1 (plain blocking read), which is what the
// worker's reader goroutine wants; Close races the blocking read the same
// way it does on a net.Conn, which is an accepted POSIX close-during-read
// hazard rather than a guaranteed cancellation.
func (s *Serial) Read(buf []byte) (int, error) {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return 0, goserial.ErrClosed
	}
	return port.Read(buf)
}

func (s *Serial) Write(data []byte) (int, error) {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return 0, goserial.ErrClosed
	}
	return port.Write(data)
}
