package smooth

import "github.com/yourusername/vdm-cli/internal/window"

type systemWindows struct {
	*window.System
}

func (w systemWindows) NewProxy() (Proxy, error) {
	p, err := w.System.NewProxy()
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SystemWindows adapts the OS window system for the switcher
func SystemWindows(sys *window.System) WindowSystem {
	return systemWindows{System: sys}
}
