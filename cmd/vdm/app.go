package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yourusername/vdm-cli/internal/config"
	"github.com/yourusername/vdm-cli/internal/filter"
	"github.com/yourusername/vdm-cli/internal/flash"
	"github.com/yourusername/vdm-cli/internal/logging"
	"github.com/yourusername/vdm-cli/internal/smooth"
	"github.com/yourusername/vdm-cli/internal/state"
	"github.com/yourusername/vdm-cli/internal/vd"
	"github.com/yourusername/vdm-cli/internal/window"
	"github.com/yourusername/vdm-cli/internal/worker"
)

// app holds the process-wide services a command needs
type app struct {
	cfg     *config.Config
	worker  *worker.Worker
	backend vd.Backend
	state   *state.DesktopState

	system *window.System
}

// loadConfig reads --config, or the default location. A missing default file is not an error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err == nil {
		return cfg, nil
	}
	if configPath == "" && errors.Is(err, os.ErrNotExist) {
		logging.Debug().Msg("no config file, using defaults")
		return config.Default(), nil
	}
	return nil, fmt.Errorf("failed to load config: %w", err)
}

// openApp selects the backend on the shell thread and checks it answers
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	w, err := worker.New("shell", vd.ThreadSetup, vd.ThreadTeardown)
	if err != nil {
		return nil, fmt.Errorf("failed to start shell thread: %w", err)
	}

	b, err := vd.Init(vd.OnWorker(w, vd.SelectOptions{LibraryPaths: cfg.Settings.LibraryPaths}))
	if err != nil {
		w.Close()
		return nil, err
	}
	b = vd.Serialize(w, b)

	count, err := vd.VerifyDesktopCount(ctx, b, cfg.GetStartupRetry())
	if err != nil {
		b.Close()
		w.Close()
		return nil, fmt.Errorf("backend not responding: %w", err)
	}
	logging.Info().Str("backend", string(b.Kind())).Int("desktops", count).Msg("backend ready")

	return &app{
		cfg:     cfg,
		worker:  w,
		backend: b,
		state:   state.NewDesktopState(),
	}, nil
}

// windows returns the OS window system, created on first use
func (a *app) windows() (*window.System, error) {
	if a.system != nil {
		return a.system, nil
	}
	sys, err := window.NewSystem(a.worker)
	if err != nil {
		return nil, err
	}
	a.system = sys
	return sys, nil
}

func (a *app) enumerator() (*window.Enumerator, error) {
	sys, err := a.windows()
	if err != nil {
		return nil, err
	}
	return window.NewEnumerator(sys, a.backend), nil
}

func (a *app) runner(onDone func(filter.Summary)) (*filter.Runner, error) {
	sys, err := a.windows()
	if err != nil {
		return nil, err
	}
	stopper := flash.New(sys, a.backend, flash.DefaultOptions())
	return filter.NewRunner(window.NewEnumerator(sys, a.backend), filter.NewApplier(a.backend, stopper), onDone), nil
}

func (a *app) switcher() (*smooth.Switcher, error) {
	sys, err := a.windows()
	if err != nil {
		return nil, err
	}
	return smooth.New(a.backend, smooth.SystemWindows(sys), a.state, smooth.DefaultOptions()), nil
}

// rules converts the configured filters
func (a *app) rules() ([]filter.Rule, error) {
	return a.cfg.Rules()
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		logging.Warn().Err(err).Msg("failed to close backend")
	}
	a.worker.Close()
}

// resolveDesktopArg accepts a one-based index or a desktop id
func resolveDesktopArg(b vd.Backend, arg string) (vd.Desktop, error) {
	target, err := config.ParseTarget(arg)
	if err != nil {
		return vd.Desktop{}, err
	}
	desktops, err := b.Desktops()
	if err != nil {
		return vd.Desktop{}, err
	}
	return target.Resolve(desktops)
}

// neighbour picks the desktop that takes over when d is removed
func neighbour(desktops []vd.Desktop, d vd.Desktop) (vd.Desktop, error) {
	if len(desktops) < 2 {
		return vd.Desktop{}, fmt.Errorf("cannot remove the only desktop")
	}
	if d.Index > 0 {
		return desktops[d.Index-1], nil
	}
	return desktops[1], nil
}

// stepTarget returns the desktop delta steps from current, clamped to the ends
func stepTarget(desktops []vd.Desktop, current vd.Desktop, delta int) vd.Desktop {
	i := current.Index + delta
	if i < 0 {
		i = 0
	}
	if i > len(desktops)-1 {
		i = len(desktops) - 1
	}
	return desktops[i]
}

func snapshotOf(desktops []vd.Desktop, current vd.Desktop) state.Snapshot {
	return state.Snapshot{Count: len(desktops), Current: current, Desktops: desktops}
}
