package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/scurrybot/scurry/internal/config"
	"github.com/scurrybot/scurry/internal/game"
	"go.uber.org/zap"
)

// Client speaks the env shim protocol over TCP: length-prefixed JSON
// frames, strict request/response. It implements game.Env.
//
// One Client per episode worker; never shared across goroutines.
type Client struct {
	conn net.Conn
	cfg  config.EnvConfig
	seed int64
	log  *zap.Logger

	closed bool
}

type request struct {
	Op     string       `json:"op"` // "reset" or "step"
	Seed   int64        `json:"seed,omitempty"`
	Action *wireAction  `json:"action,omitempty"`
}

type wireAction struct {
	Kind int `json:"kind"`
	Dir  int `json:"dir"`
}

type response struct {
	Obs   *game.Observation `json:"obs"`
	Error string            `json:"error,omitempty"`
}

// Dial connects to the env shim. seed is passed with every reset so the
// shim replays deterministically.
func Dial(cfg config.EnvConfig, seed int64, log *zap.Logger) (*Client, error) {
	conn, err := net.DialTimeout("tcp", cfg.Address, cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial env %s: %w", cfg.Address, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	return &Client{
		conn: conn,
		cfg:  cfg,
		seed: seed,
		log:  log.With(zap.Int64("seed", seed)),
	}, nil
}

func (c *Client) Reset(ctx context.Context) (game.Observation, error) {
	return c.roundTrip(ctx, request{Op: "reset", Seed: c.seed})
}

func (c *Client) Step(ctx context.Context, a game.Action) (game.Observation, error) {
	return c.roundTrip(ctx, request{
		Op:     "step",
		Action: &wireAction{Kind: int(a.Kind), Dir: int(a.Dir)},
	})
}

func (c *Client) roundTrip(ctx context.Context, req request) (game.Observation, error) {
	if c.closed {
		return game.Observation{}, game.ErrClosed
	}

	deadline := time.Now().Add(c.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetWriteDeadline(deadline)

	payload, err := json.Marshal(req)
	if err != nil {
		return game.Observation{}, fmt.Errorf("marshal request: %w", err)
	}
	if err := WriteFrame(c.conn, payload); err != nil {
		return game.Observation{}, wrapNetErr(err)
	}

	deadline = time.Now().Add(c.cfg.ReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetReadDeadline(deadline)

	raw, err := ReadFrame(c.conn)
	if err != nil {
		return game.Observation{}, wrapNetErr(err)
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return game.Observation{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != "" {
		return game.Observation{}, fmt.Errorf("env error: %s", resp.Error)
	}
	if resp.Obs == nil {
		return game.Observation{}, errors.New("env response missing observation")
	}
	return *resp.Obs, nil
}

// wrapNetErr converts I/O deadline expirations into the engine's timeout
// taxonomy; everything else passes through wrapped.
func wrapNetErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", game.ErrTimeout, err)
	}
	return fmt.Errorf("env io: %w", err)
}

func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
