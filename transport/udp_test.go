package transport_test

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/labinstr/syndesi/transport"
)

func TestUDP_OpenWriteReadClose(t *testing.T) {
	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer serverConn.Close()

	_, portStr, err := net.SplitHostPort(serverConn.LocalAddr().String())
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Atoi: %v", err)
	}

	tr := transport.NewUDP(transport.NetDescriptor{Network: "udp", Host: "127.0.0.1", Port: port})
	if err := tr.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()

	if !tr.IsOpen() {
		t.Fatalf("expected IsOpen after Open")
	}

	if _, err := tr.Write([]byte("ping")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := make([]byte, 16)
	serverConn.SetReadDeadline(time.Now().Add(time.Second))
	n, clientAddr, err := serverConn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("server ReadFromUDP: %v", err)
	}
	if string(buf[:n]) != "ping" {
		t.Errorf("server saw %q, want %q", buf[:n], "ping")
	}

	if _, err := serverConn.WriteToUDP([]byte("pong"), clientAddr); err != nil {
		t.Fatalf("server WriteToUDP: %v", err)
	}
	rbuf := make([]byte, 16)
	n, err = tr.Read(rbuf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(rbuf[:n]) != "pong" {
		t.Errorf("client saw %q, want %q", rbuf[:n], "pong")
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if tr.IsOpen() {
		t.Errorf("expected IsOpen false after Close")
	}
}

func TestUDP_ReadOnUnopenedFails(t *testing.T) {
	tr := transport.NewUDP(transport.NetDescriptor{Network: "udp", Host: "127.0.0.1", Port: 1})
	if _, err := tr.Read(make([]byte, 1)); err == nil {
		t.Errorf("expected Read on an unopened UDP transport to fail")
	}
}
