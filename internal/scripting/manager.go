package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// vm is one script's sandboxed state. LState is single-threaded; mu
// serializes calls into it.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per behavior script and exposes hook
// dispatch. Each script gets its own VM so globals never collide between
// behaviors.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil; NewManager panics otherwise.
// Postcondition: Returns a non-nil Manager with no scripts loaded.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		logger: logger,
	}
}

// LoadScript creates a sandboxed VM named name, registers the engine.*
// modules and executes the file at path. A VM already registered under name
// is replaced and closed.
//
// Precondition: name must be non-empty.
// Postcondition: The VM is registered; returns error on Lua load failure.
func (m *Manager) LoadScript(name, path string, instLimit int) error {
	if name == "" {
		return fmt.Errorf("scripting: empty script name for %q", path)
	}
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L, name)
	err := L.DoFile(path)
	cancel()
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: loading %q as %q: %w", path, name, err)
	}

	m.mu.Lock()
	if old, ok := m.vms[name]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[name] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()

	m.logger.Debug("scripting: script loaded",
		zap.String("script", name),
		zap.String("path", path),
	)
	return nil
}

// LoadDir loads every *.lua file in dir in lexicographic order, each into its
// own VM named after the file without its extension.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the loaded script names, or the first error met.
func (m *Manager) LoadDir(dir string, instLimit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	names := make([]string, 0, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(f, ".lua")
		if err := m.LoadScript(name, filepath.Join(dir, f), instLimit); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Has reports whether a script named name is loaded.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[name]
	return ok
}

// Names returns the loaded script names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vms))
	for name := range m.vms {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CallHook calls the named Lua global function in script's VM under a fresh
// instruction budget. Returns (LNil, nil) if the script is not loaded or the
// hook is not defined. Lua runtime errors, including an exhausted budget, are
// logged at Warn level and returned.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(script, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.CallHookFunc(script, hook, func(*lua.LState) []lua.LValue { return args })
}

// CallHookFunc is CallHook with arguments built by build on the script's own
// LState, while its lock is held. Tables passed to a hook must be created this
// way.
//
// Precondition: build must be non-nil and must not call back into m.
func (m *Manager) CallHookFunc(script, hook string, build func(L *lua.LState) []lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[script]
	m.mu.RUnlock()
	if !ok {
		m.logger.Info("scripting: no VM for script",
			zap.String("script", script),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	args := build(v.L)
	cancel := ArmBudget(v.L, v.limit)
	defer cancel()
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", script),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, fmt.Errorf("scripting: %s.%s: %w", script, hook, err)
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close closes every VM. The Manager must not be used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, name)
	}
}
