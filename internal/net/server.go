package net

import (
	"encoding/json"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/scurrybot/scurry/internal/game"
)

// Handler produces the observation for one decoded request. seed is the
// value from the most recent reset on the connection; step is the number
// of step requests served since that reset.
type Handler func(op string, seed int64, step int, a game.Action) (game.Observation, error)

// StubServer is an in-process env shim speaking the same framed JSON
// protocol the real shim does. It exists for client and integration
// tests; the production shim lives on the other side of the wire.
type StubServer struct {
	listener net.Listener
	handler  Handler
	log      *zap.Logger

	mu      sync.Mutex
	closed  bool
	conns   []net.Conn
	serving sync.WaitGroup
}

// NewStubServer listens on addr ("127.0.0.1:0" for an ephemeral port)
// and serves each connection on its own goroutine.
func NewStubServer(addr string, handler Handler, log *zap.Logger) (*StubServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &StubServer{listener: ln, handler: handler, log: log}
	s.serving.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr returns the bound address, for clients to dial.
func (s *StubServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *StubServer) acceptLoop() {
	defer s.serving.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return // listener closed
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.serving.Add(1)
		go func() {
			defer s.serving.Done()
			s.serve(conn)
		}()
	}
}

func (s *StubServer) serve(conn net.Conn) {
	defer conn.Close()
	var seed int64
	step := 0
	for {
		raw, err := ReadFrame(conn)
		if err != nil {
			return // client hung up
		}
		var req request
		if err := json.Unmarshal(raw, &req); err != nil {
			s.log.Error("stub env: bad request", zap.Error(err))
			return
		}

		var a game.Action
		switch req.Op {
		case "reset":
			seed = req.Seed
			step = 0
		case "step":
			step++
			if req.Action != nil {
				a = game.Action{Kind: game.ActionKind(req.Action.Kind), Dir: game.Dir(req.Action.Dir)}
			}
		}

		var resp response
		obs, err := s.handler(req.Op, seed, step, a)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Obs = &obs
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			s.log.Error("stub env: encode response", zap.Error(err))
			return
		}
		if err := WriteFrame(conn, payload); err != nil {
			return
		}
	}
}

// Close stops accepting and tears down every live connection.
func (s *StubServer) Close() error {
	s.mu.Lock()
	s.closed = true
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	err := s.listener.Close()
	for _, c := range conns {
		c.Close()
	}
	s.serving.Wait()
	return err
}
