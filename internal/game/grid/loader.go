package grid

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Spawn is a starting position and facing angle in grid units and radians.
type Spawn struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Angle float64 `yaml:"angle"`
	// Script names the behavior script driving an enemy spawn; empty selects
	// the native chaser.
	Script string `yaml:"script"`
	// Weapon arms an enemy spawn; empty leaves it unarmed.
	Weapon string `yaml:"weapon"`
}

// Level is a maze plus its spawn points.
type Level struct {
	Name    string
	Maze    *Maze
	Player  Spawn
	Enemies []Spawn
}

// yamlLevelFile is the top-level YAML structure for level files.
type yamlLevelFile struct {
	Level yamlLevel `yaml:"level"`
}

type yamlLevel struct {
	Name    string   `yaml:"name"`
	Rows    []string `yaml:"rows"`
	Player  Spawn    `yaml:"player"`
	Enemies []Spawn  `yaml:"enemies"`
}

// LoadLevelFromFile reads and validates a single level YAML file.
//
// Precondition: path must point to a level YAML file.
// Postcondition: Returns a validated Level or a non-nil error.
func LoadLevelFromFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file %s: %w", path, err)
	}
	return LoadLevelFromBytes(data)
}

// LoadLevelFromBytes parses and validates a level from YAML bytes.
//
// Postcondition: Every spawn lies in an open cell of the returned maze.
func LoadLevelFromBytes(data []byte) (*Level, error) {
	var file yamlLevelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing level YAML: %w", err)
	}

	maze, err := ParseMaze(file.Level.Rows)
	if err != nil {
		return nil, fmt.Errorf("level %q: %w", file.Level.Name, err)
	}
	lvl := &Level{
		Name:    file.Level.Name,
		Maze:    maze,
		Player:  file.Level.Player,
		Enemies: file.Level.Enemies,
	}
	if err := lvl.Validate(); err != nil {
		return nil, fmt.Errorf("validating level: %w", err)
	}
	return lvl, nil
}

// Validate checks that the level has a name and every spawn is in an open cell.
func (l *Level) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("%w: level name must not be empty", ErrInvalidMaze)
	}
	if !IsOpen(l.Maze, l.Player.X, l.Player.Y) {
		return fmt.Errorf("%w: player spawn (%.2f, %.2f) is not open", ErrInvalidMaze, l.Player.X, l.Player.Y)
	}
	for i, e := range l.Enemies {
		if !IsOpen(l.Maze, e.X, e.Y) {
			return fmt.Errorf("%w: enemy spawn %d (%.2f, %.2f) is not open", ErrInvalidMaze, i, e.X, e.Y)
		}
	}
	return nil
}
