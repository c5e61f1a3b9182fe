package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for policy decisions: monster
// classification overrides and engagement priority nudges.
// Single-goroutine access only (one VM per episode worker).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all policy scripts from the
// given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadDir(filepath.Join(scriptsDir, "policy")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load policy scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// ClassifyMonster calls Lua classify_monster(name, hint). The script
// returns a category name to override the table hint, or nil to keep it.
// Implements the combat classifier's override hook.
func (e *Engine) ClassifyMonster(name, hint string) (string, bool) {
	fn := e.vm.GetGlobal("classify_monster")
	if fn == lua.LNil {
		return "", false
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(name), lua.LString(hint)); err != nil {
		e.log.Error("lua classify_monster error", zap.Error(err), zap.String("monster", name))
		return "", false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	if result == lua.LNil {
		return "", false
	}
	s, ok := result.(lua.LString)
	if !ok {
		e.log.Error("lua classify_monster returned non-string", zap.String("monster", name))
		return "", false
	}
	return string(s), true
}

// EngageBias calls Lua engage_bias(category, adjacent) and returns
// priority deltas for melee and ranged engagement. Missing function or
// script errors leave priorities untouched.
func (e *Engine) EngageBias(category string, adjacent bool) (meleeDelta, rangedDelta int) {
	fn := e.vm.GetGlobal("engage_bias")
	if fn == lua.LNil {
		return 0, 0
	}

	adj := lua.LFalse
	if adjacent {
		adj = lua.LTrue
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(category), adj); err != nil {
		e.log.Error("lua engage_bias error", zap.Error(err), zap.String("category", category))
		return 0, 0
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return 0, 0
	}
	return lInt(rt, "melee"), lInt(rt, "ranged")
}

// TuningOverrides holds decision thresholds the scripts may adjust.
// A zero field means "keep the configured value".
type TuningOverrides struct {
	LowHitpoints  int
	HealthyMelee  int
	RingRadiusMax int
}

// GetTuning calls Lua get_tuning() for threshold overrides.
func (e *Engine) GetTuning() TuningOverrides {
	fn := e.vm.GetGlobal("get_tuning")
	if fn == lua.LNil {
		return TuningOverrides{}
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		e.log.Error("lua get_tuning error", zap.Error(err))
		return TuningOverrides{}
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return TuningOverrides{}
	}
	return TuningOverrides{
		LowHitpoints:  lInt(rt, "low_hitpoints"),
		HealthyMelee:  lInt(rt, "healthy_melee"),
		RingRadiusMax: lInt(rt, "ring_radius_max"),
	}
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
