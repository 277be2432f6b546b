package transport

import "fmt"

// NetDescriptor identifies a TCP or UDP endpoint by host and port. It
// implements syndesi.Descriptor.
type NetDescriptor struct {
	Network string // "tcp" or "udp"
	Host    string
	Port    int
}

// Initialized reports whether Host and Port are both set.
func (d NetDescriptor) Initialized() bool {
	return d.Host != "" && d.Port > 0
}

func (d NetDescriptor) String() string {
	return fmt.Sprintf("%s://%s:%d", d.Network, d.Host, d.Port)
}

func (d NetDescriptor) addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}
