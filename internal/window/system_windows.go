//go:build windows

package window

import (
	"context"
	"fmt"
	"os"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/yourusername/vdm-cli/internal/logging"
	"github.com/yourusername/vdm-cli/internal/vd"
	"github.com/yourusername/vdm-cli/internal/worker"
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	kernel32                 = windows.NewLazySystemDLL("kernel32.dll")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
	procIsWindowVisible      = user32.NewProc("IsWindowVisible")
	procGetWindow            = user32.NewProc("GetWindow")
	procGetWindowLongPtrW    = user32.NewProc("GetWindowLongPtrW")
	procSetForegroundWindow  = user32.NewProc("SetForegroundWindow")
	procSetFocus             = user32.NewProc("SetFocus")
	procShowWindow           = user32.NewProc("ShowWindow")
	procCreateWindowExW      = user32.NewProc("CreateWindowExW")
	procDestroyWindow        = user32.NewProc("DestroyWindow")
	procRegisterClassExW     = user32.NewProc("RegisterClassExW")
	procDefWindowProcW       = user32.NewProc("DefWindowProcW")
	procPeekMessageW         = user32.NewProc("PeekMessageW")
	procTranslateMessage     = user32.NewProc("TranslateMessage")
	procDispatchMessageW     = user32.NewProc("DispatchMessageW")
	procFlashWindowEx        = user32.NewProc("FlashWindowEx")
	procIsWindow             = user32.NewProc("IsWindow")
	procGetModuleHandleW     = kernel32.NewProc("GetModuleHandleW")
)

const (
	gwOwner        = 4
	gwlStyle       = -16
	gwlExStyle     = -20
	wsExToolWindow = 0x00000080
	wsPopup        = 0x80000000
	wsVisible      = 0x10000000
	swHide         = 0
	swShow         = 5
	swShowNA       = 8
	pmRemove       = 0x0001
	flashwStop     = 0
	proxyClassName = "vdmSmoothSwitchProxy"
)

type wndClassEx struct {
	size       uint32
	style      uint32
	wndProc    uintptr
	clsExtra   int32
	wndExtra   int32
	instance   windows.Handle
	icon       windows.Handle
	cursor     windows.Handle
	background windows.Handle
	menuName   *uint16
	className  *uint16
	iconSm     windows.Handle
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

type flashInfo struct {
	size    uint32
	hwnd    uintptr
	flags   uint32
	count   uint32
	timeout uint32
}

// enumHandles collects EnumWindows results. It lives on the heap so the
// callback never holds a pointer into a goroutine stack.
var (
	enumMu      sync.Mutex
	enumHandles []windows.HWND
)

// enumCallback is created once since callbacks are never freed
var enumCallback = syscall.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
	enumHandles = append(enumHandles, hwnd)
	return 1
})

func enumerate() ([]windows.HWND, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumHandles = enumHandles[:0]
	if err := windows.EnumWindows(enumCallback, nil); err != nil {
		return nil, err
	}
	return append([]windows.HWND(nil), enumHandles...), nil
}

// System performs window operations on the coordination thread
type System struct {
	w         *worker.Worker
	classOnce sync.Once
	classErr  error
	self      uint32
}

// NewSystem returns the Windows window system bound to w
func NewSystem(w *worker.Worker) (*System, error) {
	return &System{w: w, self: uint32(os.Getpid())}, nil
}

func (s *System) do(fn func() error) error {
	return s.w.Do(context.Background(), fn)
}

// TopLevel lists visible, unowned, non-tool windows of other processes
func (s *System) TopLevel() ([]RawWindow, error) {
	var out []RawWindow
	err := s.do(func() error {
		handles, err := enumerate()
		if err != nil {
			return fmt.Errorf("enumerate windows: %w", err)
		}

		names := make(map[uint32]string)
		for _, h := range handles {
			raw, ok := s.describe(h, names)
			if ok {
				out = append(out, raw)
			}
		}
		return nil
	})
	return out, err
}

func (s *System) describe(h windows.HWND, names map[uint32]string) (RawWindow, bool) {
	if r, _, _ := procIsWindowVisible.Call(uintptr(h)); r == 0 {
		return RawWindow{}, false
	}
	if owner, _, _ := procGetWindow.Call(uintptr(h), gwOwner); owner != 0 {
		return RawWindow{}, false
	}
	index := int32(gwlExStyle)
	exStyle, _, _ := procGetWindowLongPtrW.Call(uintptr(h), uintptr(index))
	if exStyle&wsExToolWindow != 0 {
		return RawWindow{}, false
	}

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(h, &pid); err != nil || pid == s.self {
		return RawWindow{}, false
	}

	title := windowText(h)
	if title == "" {
		return RawWindow{}, false
	}

	exe, cached := names[pid]
	if !cached {
		exe = processImage(pid)
		names[pid] = exe
	}

	return RawWindow{
		Handle:    vd.WindowHandle(h),
		Title:     title,
		ProcessID: pid,
		ExePath:   exe,
	}, true
}

func windowText(h windows.HWND) string {
	n, _, _ := procGetWindowTextLengthW.Call(uintptr(h))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

func processImage(pid uint32) string {
	p, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(p)

	buf := make([]uint16, windows.MAX_LONG_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(p, 0, &buf[0], &size); err != nil {
		return ""
	}
	return windows.UTF16ToString(buf[:size])
}

// Foreground returns the focused top-level window, or 0
func (s *System) Foreground() vd.WindowHandle {
	var h vd.WindowHandle
	s.do(func() error {
		h = vd.WindowHandle(windows.GetForegroundWindow())
		return nil
	})
	return h
}

// SetForeground focuses hwnd
func (s *System) SetForeground(hwnd vd.WindowHandle) error {
	return s.do(func() error {
		if r, _, _ := procIsWindow.Call(uintptr(hwnd)); r == 0 {
			return fmt.Errorf("%w: %s", vd.ErrWindowNotFound, hwnd)
		}
		if r, _, err := procSetForegroundWindow.Call(uintptr(hwnd)); r == 0 {
			return fmt.Errorf("set foreground %s: %w", hwnd, err)
		}
		return nil
	})
}

// StopFlashing sends FLASHW_STOP to hwnd. On its own this can leave the
// taskbar button visible on every desktop; see flash.Stopper.
func (s *System) StopFlashing(hwnd vd.WindowHandle) error {
	return s.do(func() error {
		if r, _, _ := procIsWindow.Call(uintptr(hwnd)); r == 0 {
			return fmt.Errorf("%w: %s", vd.ErrWindowNotFound, hwnd)
		}
		info := flashInfo{hwnd: uintptr(hwnd), flags: flashwStop}
		info.size = uint32(unsafe.Sizeof(info))
		procFlashWindowEx.Call(uintptr(unsafe.Pointer(&info)))
		return nil
	})
}

// Hide hides hwnd and reports whether it was visible before
func (s *System) Hide(hwnd vd.WindowHandle) (bool, error) {
	var wasVisible bool
	err := s.do(func() error {
		if r, _, _ := procIsWindow.Call(uintptr(hwnd)); r == 0 {
			return fmt.Errorf("%w: %s", vd.ErrWindowNotFound, hwnd)
		}
		r, _, _ := procShowWindow.Call(uintptr(hwnd), swHide)
		wasVisible = r != 0
		return nil
	})
	return wasVisible, err
}

// ShowNoActivate shows hwnd without taking focus
func (s *System) ShowNoActivate(hwnd vd.WindowHandle) error {
	return s.do(func() error {
		procShowWindow.Call(uintptr(hwnd), swShowNA)
		return nil
	})
}

// IsVisible reports whether hwnd has the WS_VISIBLE style
func (s *System) IsVisible(hwnd vd.WindowHandle) bool {
	var visible bool
	s.do(func() error {
		index := int32(gwlStyle)
		style, _, _ := procGetWindowLongPtrW.Call(uintptr(hwnd), uintptr(index))
		visible = style&wsVisible != 0
		return nil
	})
	return visible
}

func (s *System) registerClass() error {
	s.classOnce.Do(func() {
		instance, _, _ := procGetModuleHandleW.Call(0)
		name, _ := windows.UTF16PtrFromString(proxyClassName)
		wc := wndClassEx{
			wndProc:   procDefWindowProcW.Addr(),
			instance:  windows.Handle(instance),
			className: name,
		}
		wc.size = uint32(unsafe.Sizeof(wc))
		if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
			s.classErr = fmt.Errorf("register proxy window class: %w", err)
		}
	})
	return s.classErr
}

// pump drains pending messages for windows owned by the coordination thread
func pump() {
	var m msg
	for {
		r, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if r == 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

// Proxy is a zero-size popup window used to carry focus across desktops
type Proxy struct {
	s    *System
	hwnd vd.WindowHandle
}

// NewProxy creates a hidden zero-size proxy window on the coordination thread
func (s *System) NewProxy() (*Proxy, error) {
	var p *Proxy
	err := s.do(func() error {
		if err := s.registerClass(); err != nil {
			return err
		}
		instance, _, _ := procGetModuleHandleW.Call(0)
		class, _ := windows.UTF16PtrFromString(proxyClassName)
		title, _ := windows.UTF16PtrFromString("")

		hwnd, _, err := procCreateWindowExW.Call(
			0,
			uintptr(unsafe.Pointer(class)),
			uintptr(unsafe.Pointer(title)),
			uintptr(wsPopup|wsVisible),
			0, 0, 0, 0,
			0, 0, instance, 0,
		)
		if hwnd == 0 {
			return fmt.Errorf("create proxy window: %w", err)
		}
		pump()
		p = &Proxy{s: s, hwnd: vd.WindowHandle(hwnd)}
		logging.Debug().Stringer("hwnd", p.hwnd).Msg("created proxy window")
		return nil
	})
	return p, err
}

// Handle returns the proxy's window handle
func (p *Proxy) Handle() vd.WindowHandle {
	return p.hwnd
}

// Focus shows the proxy and makes it the foreground window
func (p *Proxy) Focus() error {
	return p.s.do(func() error {
		procShowWindow.Call(uintptr(p.hwnd), swShow)
		r, _, err := procSetForegroundWindow.Call(uintptr(p.hwnd))
		procSetFocus.Call(uintptr(p.hwnd))
		pump()
		if r == 0 {
			return fmt.Errorf("focus proxy %s: %w", p.hwnd, err)
		}
		return nil
	})
}

// Destroy closes the proxy window
func (p *Proxy) Destroy() error {
	return p.s.do(func() error {
		if r, _, err := procDestroyWindow.Call(uintptr(p.hwnd)); r == 0 {
			return fmt.Errorf("destroy proxy %s: %w", p.hwnd, err)
		}
		pump()
		return nil
	})
}
