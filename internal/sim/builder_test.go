package sim_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/mazestrike/internal/config"
	"github.com/cory-johannsen/mazestrike/internal/game/grid"
	"github.com/cory-johannsen/mazestrike/internal/game/weapon"
	"github.com/cory-johannsen/mazestrike/internal/scripting"
	"github.com/cory-johannsen/mazestrike/internal/sim"
)

const arenaYAML = `
level:
  name: arena
  rows:
    - "##########"
    - "#........#"
    - "#........#"
    - "##########"
  player: {x: 1.5, y: 1.5}
  enemies:
    - {x: 4.5, y: 1.5, script: idle}
    - {x: 8.5, y: 2.5, script: charge, weapon: stun}
    - {x: 6.5, y: 2.5}
`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("weapons.taser.max_ammo", 3)
	v.Set("weapons.stun.cooldown_ms", 100)
	cfg, err := config.LoadFromViper(v)
	require.NoError(t, err)
	return cfg
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func chargeScripts(t *testing.T) *scripting.Manager {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "charge.lua", `function decide(self, view) return { forward = true } end`)
	mgr := scripting.NewManager(zaptest.NewLogger(t))
	t.Cleanup(mgr.Close)
	_, err := mgr.LoadDir(dir, 0)
	require.NoError(t, err)
	return mgr
}

func TestBuild_SpawnsLevel(t *testing.T) {
	cfg := testConfig(t)
	lvl, err := grid.LoadLevelFromBytes([]byte(arenaYAML))
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	reg, err := sim.NewRegistry(cfg, chargeScripts(t), logger)
	require.NoError(t, err)

	loop, err := sim.Build(cfg, lvl, reg, logger, sim.Collaborators{})
	require.NoError(t, err)

	assert.Equal(t, 1.5, loop.Player().X)
	assert.Equal(t, 0.25, loop.Player().Radius())
	taser, ok := loop.Arsenal().Get(weapon.Taser)
	require.True(t, ok)
	assert.Equal(t, 3, taser.MaxAmmo())

	enemies := loop.Enemies()
	require.Len(t, enemies, 3)
	assert.Nil(t, enemies[0].Weapon)
	require.NotNil(t, enemies[1].Weapon)
	assert.Equal(t, weapon.Stun, enemies[1].Weapon.Kind())
	assert.Equal(t, int64(100), enemies[1].Weapon.Params().Cooldown.Milliseconds())
	assert.Equal(t, 0.3, enemies[2].Actor.Radius())
}

func TestBuild_UnknownBehavior(t *testing.T) {
	cfg := testConfig(t)
	lvl, err := grid.LoadLevelFromBytes([]byte(arenaYAML))
	require.NoError(t, err)
	reg, err := sim.NewRegistry(cfg, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = sim.Build(cfg, lvl, reg, zap.NewNop(), sim.Collaborators{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sim.ErrUnknownBehavior))
	assert.Contains(t, err.Error(), "charge")
}

func TestBuild_UnknownEnemyWeapon(t *testing.T) {
	cfg := testConfig(t)
	lvl, err := grid.LoadLevelFromBytes([]byte(`
level:
  name: bad
  rows: ["#####", "#...#", "#####"]
  player: {x: 1.5, y: 1.5}
  enemies:
    - {x: 3.5, y: 1.5, weapon: flamethrower}
`))
	require.NoError(t, err)
	reg, err := sim.NewRegistry(cfg, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = sim.Build(cfg, lvl, reg, zap.NewNop(), sim.Collaborators{})
	assert.True(t, errors.Is(err, weapon.ErrUnknownKind))
}

func TestSetup_LoadsLevelAndScripts(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Simulation.Level = writeFile(t, dir, "arena.yaml", arenaYAML)
	scripts := filepath.Join(dir, "scripts")
	require.NoError(t, os.Mkdir(scripts, 0755))
	writeFile(t, scripts, "charge.lua", `function decide() return { forward = true } end`)
	cfg.Scripts.Dir = scripts

	core, logs := observer.New(zap.InfoLevel)
	world, err := sim.Setup(cfg, zap.New(core), sim.Collaborators{})
	require.NoError(t, err)
	defer world.Close()

	assert.Equal(t, "arena", world.Level.Name)
	assert.Len(t, world.Loop.Enemies(), 3)
	assert.Equal(t, []string{"charge"}, world.Scripts.Names())
	assert.Equal(t, 1, logs.FilterMessage("world ready").Len())
}

func TestSetup_MissingScriptsDirIsSkipped(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Simulation.Level = writeFile(t, dir, "small.yaml", `
level:
  name: small
  rows: ["#####", "#...#", "#####"]
  player: {x: 1.5, y: 1.5}
  enemies:
    - {x: 3.5, y: 1.5}
`)
	cfg.Scripts.Dir = filepath.Join(dir, "missing")

	core, logs := observer.New(zap.WarnLevel)
	world, err := sim.Setup(cfg, zap.New(core), sim.Collaborators{})
	require.NoError(t, err)
	defer world.Close()
	assert.Equal(t, 1, logs.FilterMessage("scripts directory unavailable").Len())
}

func TestSetup_MissingLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Level = "/nonexistent/level.yaml"
	_, err := sim.Setup(cfg, zap.NewNop(), sim.Collaborators{})
	assert.Error(t, err)
}

func TestSetup_ShippedContent(t *testing.T) {
	root := repoRoot(t)
	cfg := testConfig(t)
	cfg.Simulation.Level = filepath.Join(root, "content", "levels", "corridor.yaml")
	cfg.Scripts.Dir = filepath.Join(root, "content", "scripts")

	world, err := sim.Setup(cfg, zaptest.NewLogger(t), sim.Collaborators{})
	require.NoError(t, err)
	defer world.Close()
	assert.Equal(t, "corridor", world.Level.Name)
	assert.Equal(t, []string{"patrol", "sentry"}, world.Scripts.Names())
}

// repoRoot walks up from the test's working directory to find the module root.
func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root
		}
		parent := filepath.Dir(root)
		if parent == root {
			t.Fatalf("could not find repo root from %s", wd)
		}
		root = parent
	}
}
