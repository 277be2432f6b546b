package modbus

import "testing"

func TestCheckAddress_RejectsZero(t *testing.T) {
	if _, err := checkAddress(0); err == nil {
		t.Errorf("expected address 0 to be rejected")
	}
}

func TestCheckAddress_TranslatesToZeroBased(t *testing.T) {
	addr, err := checkAddress(1)
	if err != nil {
		t.Fatalf("checkAddress(1): %v", err)
	}
	if addr != 0 {
		t.Errorf("checkAddress(1) = %d, want 0", addr)
	}
}

func TestCheckAddress_RejectsOutOfRange(t *testing.T) {
	if _, err := checkAddress(65537); err == nil {
		t.Errorf("expected address 65537 to be rejected")
	}
}

func TestCheckCount_RejectsZeroAndOverMax(t *testing.T) {
	if err := checkCount(0, 10); err == nil {
		t.Errorf("expected count 0 to be rejected")
	}
	if err := checkCount(11, 10); err == nil {
		t.Errorf("expected count over max to be rejected")
	}
	if err := checkCount(10, 10); err != nil {
		t.Errorf("expected count at max to be accepted, got %v", err)
	}
}

func TestBytesToRegsAndBack_RoundTrip(t *testing.T) {
	buf := []byte{0x12, 0x34, 0xAB, 0xCD}
	regs := bytesToRegs(buf)
	if len(regs) != 2 || regs[0] != 0x1234 || regs[1] != 0xABCD {
		t.Fatalf("bytesToRegs = %x, want [1234 ABCD]", regs)
	}
	back := regsToBytes(regs)
	if len(back) != 4 || back[0] != 0x12 || back[1] != 0x34 || back[2] != 0xAB || back[3] != 0xCD {
		t.Errorf("regsToBytes = %x, want %x", back, buf)
	}
}

func TestClient_EncodeDecodeUint32RoundTrip(t *testing.T) {
	c := &Client{}
	regs := c.EncodeUint32(0xDEADBEEF)
	if got := c.DecodeUint32(regs); got != 0xDEADBEEF {
		t.Errorf("DecodeUint32(EncodeUint32(x)) = %#x, want %#x", got, uint32(0xDEADBEEF))
	}
}

func TestClient_EncodeDecodeASCIIString(t *testing.T) {
	c := &Client{}
	regs := c.EncodeASCIIString(3, "hi", ' ')
	if got := c.DecodeASCIIString(regs, ' '); got != "hi" {
		t.Errorf("DecodeASCIIString = %q, want %q", got, "hi")
	}
}

func TestToUint16s(t *testing.T) {
	got := toUint16s([]int{1, 2, 65535})
	want := []uint16{1, 2, 65535}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("toUint16s()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
