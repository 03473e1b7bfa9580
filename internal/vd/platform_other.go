//go:build !windows

package vd

import (
	"fmt"
	"runtime"
)

func platformOptions() SelectOptions {
	unsupported := fmt.Errorf("virtual desktops require Windows, running on %s", runtime.GOOS)
	return SelectOptions{
		Exists: fileExists,
		LoadDynamic: func(string) (Backend, error) {
			return nil, unsupported
		},
		NewStatic: func() (Backend, error) {
			return nil, unsupported
		},
	}
}

// ThreadSetup prepares the coordination thread. Nothing to do off Windows.
func ThreadSetup() error { return nil }

// ThreadTeardown releases what ThreadSetup acquired
func ThreadTeardown() {}
