// Package projectctx locates the blueprint project a command runs in.
package projectctx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/blueprint/internal/config"
)

// ErrNoProject is returned when no .blueprint directory exists above the start dir.
var ErrNoProject = errors.New("not inside a blueprint project (run 'blueprint init')")

// ProjectContext describes the enclosing project.
type ProjectContext struct {
	Root       string // directory containing .blueprint/
	ConfigPath string // .blueprint/config.yaml
	Config     *config.Config
}

// DatabasePath is the resolved SQLite file for the project.
func (p *ProjectContext) DatabasePath() string {
	return p.Config.DatabasePath(p.Root)
}

// Detect walks up from start to the first directory holding .blueprint/.
func Detect(start string) (*ProjectContext, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}

	for {
		info, err := os.Stat(filepath.Join(dir, config.DirName))
		if err == nil && info.IsDir() {
			cfg, err := config.LoadConfig(dir)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", config.Path(dir), err)
			}
			return &ProjectContext{Root: dir, ConfigPath: config.Path(dir), Config: cfg}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoProject
		}
		dir = parent
	}
}

// DetectFromCwd runs Detect from the working directory.
func DetectFromCwd() (*ProjectContext, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return Detect(dir)
}

// Init creates .blueprint/ with a default config under root. An existing
// config is left untouched.
func Init(root string) (*ProjectContext, bool, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, false, err
	}

	created := false
	if _, err := os.Stat(config.Path(root)); errors.Is(err, os.ErrNotExist) {
		if err := config.SaveConfig(root, config.Default()); err != nil {
			return nil, false, err
		}
		created = true
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, false, err
	}
	return &ProjectContext{Root: root, ConfigPath: config.Path(root), Config: cfg}, created, nil
}

// ResolveActor picks the actor recorded on mutations: config (or
// BLUEPRINT_ACTOR), then $USER.
func ResolveActor(cfg *config.Config) string {
	if cfg != nil && cfg.Actor != "" {
		return cfg.Actor
	}
	return os.Getenv("USER")
}
