package transport

import "fmt"

// Parity selects the serial line's parity bit handling.
type Parity int

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// SerialDescriptor identifies a serial device and its line parameters. It
// implements syndesi.Descriptor.
type SerialDescriptor struct {
	Device   string
	BaudRate int
	DataBits int // 5, 6, 7, or 8
	StopBits int // 1 or 2
	Parity   Parity
	RTSCTS   bool // hardware (RTS/CTS) flow control
}

// Initialized reports whether Device and BaudRate are both set.
func (d SerialDescriptor) Initialized() bool {
	return d.Device != "" && d.BaudRate > 0
}

func (d SerialDescriptor) String() string {
	return fmt.Sprintf("serial://%s@%d", d.Device, d.BaudRate)
}
