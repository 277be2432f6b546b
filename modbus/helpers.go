package modbus

// this file contains some utility functions for converting between Go ints
// and the fixed-width wire values a PDU is built from.

import (
	"fmt"

	"github.com/labinstr/syndesi/internal/wire"
)

func wordClamp(val int) int {
	if val < 0 {
		return 0
	}
	if val > 65535 {
		return 65535
	}
	return val
}

func byteClamp(val int) int {
	if val < 0 {
		return 0
	}
	if val > 255 {
		return 255
	}
	return val
}

func checkPanic(to string, val int, max int) {
	if val < 0 {
		panic(fmt.Sprintf("Unable to convert %v to %v - negative", val, to))
	}
	if val > max {
		panic(fmt.Sprintf("Unable to convert %v to %v - exceeds max value %v", val, to, max))
	}
}

func wordPanic(val int) uint16 {
	checkPanic("uint16", val, 65535)
	return uint16(val)
}

func bytePanic(val int) byte {
	checkPanic("byte", val, 255)
	return byte(val)
}

// getWord retrieves a 16-bit word from a byte slice. PDU structural fields
// (addresses, counts, byte counts) are always big-endian on the wire
// regardless of a Client's configured register ByteOrder, which only
// governs the layout of register *values* (see internal/wire).
func getWord(data []byte, index int) uint16 {
	return wire.Uint16(data[index:index+2], wire.BigEndian)
}

// iGetWord is getWord, returning an int instead of a uint16 to reduce
// casting at call sites.
func iGetWord(data []byte, index int) int {
	return int(getWord(data, index))
}

// setWord stores a 16-bit word in a byte slice; see getWord for byte order.
func setWord(data []byte, index int, value uint16) {
	wire.PutUint16(data[index:index+2], value, wire.BigEndian)
}

// iSetWord is setWord, taking the value as an int for convenience at call
// sites that traffic in ints.
func iSetWord(data []byte, index int, value int) {
	setWord(data, index, wordPanic(value))
}

// getByte retrieves an 8-bit word in standard Modbus layout from a byte slice.
// This is nothing more than data[index] but it provides consistency with getWord
func getByte(data []byte, index int) (byt byte) {
	byt = data[index]
	return
}

// iGetByte retrieves an 8-bit word in standard Modbus layout from a byte slice.
// This is nothing more than data[index] but it provides consistency with getWord
// Returns the value as an int instead of a byte (reduces casting in some use cases)
func iGetByte(data []byte, index int) int {
	return int(getByte(data, index))
}

// setByte sets an 8-bit value in standard Modbus layout in a byte slice.
// This is nothing more than data[index] = value but it provides consistency with setWord
func setByte(data []byte, index int, value byte) {
	data[index] = value
}

// iSetByte sets an 8-bit value in standard Modbus layout in a byte slice.
// This is nothing more than data[index] = value but it provides consistency with setWord
func iSetByte(data []byte, index int, value int) {
	data[index] = bytePanic(value)
}

