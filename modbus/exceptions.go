package modbus

import "fmt"

// exceptionDescriptions maps a Modbus exception code to a human
// description, generalized from the teacher's own per-code constructors
// (errors.go's IllegalFunctionErrorF/IllegalAddressErrorF/etc.) into a
// lookup table, since this package only ever needs to *decode* an
// exception a server sent back, never construct one to send.
var exceptionDescriptions = map[byte]string{
	0x01: "illegal function",
	0x02: "illegal data address",
	0x03: "illegal data value",
	0x04: "server device failure",
	0x05: "acknowledge",
	0x06: "server device busy",
	0x08: "memory parity error",
	0x0A: "gateway path unavailable",
	0x0B: "gateway target device failed to respond",
}

// ModbusException reports a Modbus exception response: the response
// function code had bit 0x80 set and byte 1 carried Code. Unknown codes
// still produce a ModbusException with a generic description rather than
// a WorkerError, per spec.md §7.
type ModbusException struct {
	Function byte
	Code     byte
}

func (e *ModbusException) Error() string {
	desc, ok := exceptionDescriptions[e.Code]
	if !ok {
		desc = "unknown exception"
	}
	return fmt.Sprintf("modbus: function 0x%02X exception 0x%02X: %s", e.Function, e.Code, desc)
}

// Description returns the human-readable meaning of the exception code,
// or "unknown exception" if the code isn't in the standard table.
func (e *ModbusException) Description() string {
	if desc, ok := exceptionDescriptions[e.Code]; ok {
		return desc
	}
	return "unknown exception"
}
