// Package tunneltest provides a loopback tunnel service for tests.
package tunneltest

import (
	"encoding/json"
	"net"
	"sync"
	"testing"

	"github.com/yllada/snx-gui/tunnel"
)

// Handler answers one request. Returning nil sends no reply.
type Handler func(req tunnel.Request) []byte

// Service is a UDP tunnel service bound to a random loopback port.
type Service struct {
	conn     net.PacketConn
	mu       sync.Mutex
	handler  Handler
	requests []tunnel.Request
	raw      [][]byte
	done     chan struct{}
}

// NewService starts a service that answers with handler. It is closed
// automatically when the test ends.
func NewService(t testing.TB, handler Handler) *Service {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &Service{conn: conn, handler: handler, done: make(chan struct{})}
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

// Addr returns the address clients should send to.
func (s *Service) Addr() string {
	return s.conn.LocalAddr().String()
}

// SetHandler replaces the reply handler.
func (s *Service) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Requests returns the decoded requests received so far.
func (s *Service) Requests() []tunnel.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tunnel.Request(nil), s.requests...)
}

// RawRequests returns the undecoded datagrams received so far.
func (s *Service) RawRequests() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.raw...)
}

// Close stops the service.
func (s *Service) Close() {
	s.conn.Close()
	<-s.done
}

func (s *Service) serve() {
	defer close(s.done)
	buf := make([]byte, 65535)
	for {
		n, addr, err := s.conn.ReadFrom(buf)
		if err != nil {
			return
		}
		datagram := append([]byte(nil), buf[:n]...)

		var req tunnel.Request
		decodeErr := json.Unmarshal(datagram, &req)

		s.mu.Lock()
		s.raw = append(s.raw, datagram)
		if decodeErr == nil {
			s.requests = append(s.requests, req)
		}
		handler := s.handler
		s.mu.Unlock()

		if decodeErr != nil || handler == nil {
			continue
		}
		if reply := handler(req); reply != nil {
			s.conn.WriteTo(reply, addr)
		}
	}
}

// Reply returns a handler that always answers with resp.
func Reply(resp tunnel.Response) Handler {
	data, err := json.Marshal(resp)
	if err != nil {
		panic(err)
	}
	return func(tunnel.Request) []byte { return data }
}

// ReplyRaw returns a handler that always answers with the given bytes.
func ReplyRaw(data []byte) Handler {
	return func(tunnel.Request) []byte { return data }
}

// Silent is a handler that never answers.
func Silent(tunnel.Request) []byte { return nil }

// Connected returns a ConnectionStatus response with a timestamp.
func Connected(since string) tunnel.Response {
	return tunnel.Response{
		Kind:   tunnel.ResponseConnectionStatus,
		Status: tunnel.ConnectionStatus{ConnectedSince: &since},
	}
}

// Disconnected returns a ConnectionStatus response without a timestamp.
func Disconnected() tunnel.Response {
	return tunnel.Response{Kind: tunnel.ResponseConnectionStatus}
}
