// Package transport provides the bytes-level endpoints a syndesi.Adapter
// drives: TCP and UDP sockets and serial ports. Each type here implements
// syndesi.Transport structurally (Open/Close/IsOpen/Read/Write) without
// importing the root package, mirroring how the teacher's own tcp.go kept
// the wire-level reader/writer goroutines free of its higher command
// dispatch layer.
package transport

import "time"

// DefaultOpenTimeout bounds how long Open waits to establish a connection
// before reporting failure (spec.md §5's "short, fixed open-timeout").
const DefaultOpenTimeout = 500 * time.Millisecond
