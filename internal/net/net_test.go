package net

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/scurrybot/scurry/internal/config"
	"github.com/scurrybot/scurry/internal/game"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"op":"reset","seed":42}`)
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %q, want %q", got, payload)
	}
}

func TestFrameRejectsOversize(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})
	if _, err := ReadFrame(&buf); err == nil {
		t.Fatal("oversize frame accepted")
	}
}

func TestFrameRejectsZeroLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0})
	if _, err := ReadFrame(&buf); err == nil {
		t.Fatal("zero-length frame accepted")
	}
}

func testEnvConfig(addr string) config.EnvConfig {
	return config.EnvConfig{
		Address:      addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}
}

func canned(turn int) game.Observation {
	glyphs, chars, specials := game.NewGrids()
	glyphs[1][1] = 300
	chars[1][1] = '@'
	return game.Observation{
		Glyphs:   glyphs,
		Chars:    chars,
		Specials: specials,
		Stats:    game.BLStats{X: 1, Y: 1, HitPoints: 10, MaxHitPoints: 10, Time: turn},
	}
}

func TestClientResetAndStep(t *testing.T) {
	var gotSeed int64
	var gotAction game.Action
	srv, err := NewStubServer("127.0.0.1:0", func(op string, seed int64, step int, a game.Action) (game.Observation, error) {
		gotSeed = seed
		if op == "step" {
			gotAction = a
		}
		return canned(step), nil
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("stub server: %v", err)
	}
	defer srv.Close()

	c, err := Dial(testEnvConfig(srv.Addr()), 42, zap.NewNop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	obs, err := c.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if gotSeed != 42 {
		t.Fatalf("server saw seed %d, want 42", gotSeed)
	}
	if obs.Stats.Time != 0 {
		t.Fatalf("reset turn = %d, want 0", obs.Stats.Time)
	}

	obs, err = c.Step(ctx, game.Move(game.DirSE))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if gotAction.Kind != game.ActMove || gotAction.Dir != game.DirSE {
		t.Fatalf("server decoded action %v", gotAction)
	}
	if obs.Stats.Time != 1 {
		t.Fatalf("step turn = %d, want 1", obs.Stats.Time)
	}
}

func TestClientSurfacesEnvError(t *testing.T) {
	srv, err := NewStubServer("127.0.0.1:0", func(op string, seed int64, step int, a game.Action) (game.Observation, error) {
		return game.Observation{}, errors.New("seed exhausted")
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("stub server: %v", err)
	}
	defer srv.Close()

	c, err := Dial(testEnvConfig(srv.Addr()), 1, zap.NewNop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if _, err := c.Reset(context.Background()); err == nil {
		t.Fatal("env error not surfaced")
	}
}

func TestClientAfterClose(t *testing.T) {
	srv, err := NewStubServer("127.0.0.1:0", func(op string, seed int64, step int, a game.Action) (game.Observation, error) {
		return canned(step), nil
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("stub server: %v", err)
	}
	defer srv.Close()

	c, err := Dial(testEnvConfig(srv.Addr()), 1, zap.NewNop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := c.Reset(context.Background()); !errors.Is(err, game.ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}
