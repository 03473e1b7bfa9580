//go:build !windows

package window

import (
	"fmt"
	"runtime"

	"github.com/yourusername/vdm-cli/internal/vd"
	"github.com/yourusername/vdm-cli/internal/worker"
)

// System is unavailable off Windows
type System struct{}

// Proxy is unavailable off Windows
type Proxy struct{}

// NewSystem reports that window control needs Windows
func NewSystem(*worker.Worker) (*System, error) {
	return nil, fmt.Errorf("%w: window control requires Windows, running on %s", vd.ErrUnsupported, runtime.GOOS)
}

func (s *System) TopLevel() ([]RawWindow, error) { return nil, vd.ErrUnsupported }
func (s *System) Foreground() vd.WindowHandle { return 0 }
func (s *System) SetForeground(vd.WindowHandle) error { return vd.ErrUnsupported }
func (s *System) StopFlashing(vd.WindowHandle) error { return vd.ErrUnsupported }
func (s *System) Hide(vd.WindowHandle) (bool, error) { return false, vd.ErrUnsupported }
func (s *System) ShowNoActivate(vd.WindowHandle) error { return vd.ErrUnsupported }
func (s *System) IsVisible(vd.WindowHandle) bool { return false }
func (s *System) NewProxy() (*Proxy, error) { return nil, vd.ErrUnsupported }
func (p *Proxy) Handle() vd.WindowHandle { return 0 }
func (p *Proxy) Focus() error { return vd.ErrUnsupported }
func (p *Proxy) Destroy() error { return vd.ErrUnsupported }
