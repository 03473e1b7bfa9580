//go:build windows

package vd

import (
	"fmt"
	"unsafe"

	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"

	"github.com/yourusername/vdm-cli/internal/logging"
)

// dynamicBackend calls the exports of VirtualDesktopAccessor.dll.
// The library reports failure as -1 and a zero GUID.
type dynamicBackend struct {
	dll  *windows.DLL
	path string

	getCurrentDesktopNumber   *windows.Proc
	getDesktopCount           *windows.Proc
	goToDesktopNumber         *windows.Proc
	moveWindowToDesktopNumber *windows.Proc
	getWindowDesktopNumber    *windows.Proc
	isPinnedWindow            *windows.Proc
	pinWindow                 *windows.Proc
	unPinWindow               *windows.Proc
	isPinnedApp               *windows.Proc

	// Optional exports, missing on older library builds
	getDesktopIDByNumber *windows.Proc
	getDesktopNumberByID *windows.Proc
	getDesktopName       *windows.Proc
	setDesktopName       *windows.Proc
	createDesktop        *windows.Proc
	removeDesktop        *windows.Proc
}

func loadDynamic(path string) (Backend, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	b := &dynamicBackend{dll: dll, path: path}

	required := []struct {
		name string
		proc **windows.Proc
	}{
		{"GetCurrentDesktopNumber", &b.getCurrentDesktopNumber},
		{"GetDesktopCount", &b.getDesktopCount},
		{"GoToDesktopNumber", &b.goToDesktopNumber},
		{"MoveWindowToDesktopNumber", &b.moveWindowToDesktopNumber},
		{"GetWindowDesktopNumber", &b.getWindowDesktopNumber},
		{"IsPinnedWindow", &b.isPinnedWindow},
		{"PinWindow", &b.pinWindow},
		{"UnPinWindow", &b.unPinWindow},
		{"IsPinnedApp", &b.isPinnedApp},
	}
	for _, r := range required {
		p, err := dll.FindProc(r.name)
		if err != nil {
			dll.Release()
			return nil, fmt.Errorf("%s: missing export %s: %w", path, r.name, err)
		}
		*r.proc = p
	}

	optional := []struct {
		name string
		proc **windows.Proc
	}{
		{"GetDesktopIdByNumber", &b.getDesktopIDByNumber},
		{"GetDesktopNumberById", &b.getDesktopNumberByID},
		{"GetDesktopName", &b.getDesktopName},
		{"SetDesktopName", &b.setDesktopName},
		{"CreateDesktop", &b.createDesktop},
		{"RemoveDesktop", &b.removeDesktop},
	}
	for _, o := range optional {
		if p, err := dll.FindProc(o.name); err == nil {
			*o.proc = p
		} else {
			logging.Debug().Str("export", o.name).Msg("optional export missing")
		}
	}

	return b, nil
}

func (b *dynamicBackend) Kind() Kind { return KindDynamic }

// call returns the export's int32 result, failing on -1
func (b *dynamicBackend) call(op string, p *windows.Proc, notFound error, args ...uintptr) (int32, error) {
	if p == nil {
		return 0, callErr(KindDynamic, op, ErrUnsupported, fmt.Errorf("export missing from %s", b.path))
	}
	r, _, _ := p.Call(args...)
	v := int32(r)
	if v == -1 {
		return v, callErr(KindDynamic, op, notFound, fmt.Errorf("%s returned -1", p.Name))
	}
	return v, nil
}

func (b *dynamicBackend) DesktopCount() (int, error) {
	n, err := b.call("DesktopCount", b.getDesktopCount, ErrBackendUnavailable)
	return int(n), err
}

func (b *dynamicBackend) Desktops() ([]Desktop, error) {
	count, err := b.DesktopCount()
	if err != nil {
		return nil, err
	}
	desktops := make([]Desktop, count)
	for i := range desktops {
		desktops[i] = b.describe(i)
	}
	return desktops, nil
}

// describe fills in what the library can tell about desktop index i
func (b *dynamicBackend) describe(i int) Desktop {
	d := Desktop{Index: i, ID: fmt.Sprintf("desktop-%d", i+1)}
	if id, ok := b.idByNumber(i); ok {
		d.ID = id
	}
	if name, err := b.nameByNumber(i); err == nil {
		d.Name = name
	}
	return d
}

func (b *dynamicBackend) idByNumber(i int) (string, bool) {
	if b.getDesktopIDByNumber == nil {
		return "", false
	}
	// GUID is returned through a hidden result pointer
	var g ole.GUID
	b.getDesktopIDByNumber.Call(uintptr(unsafe.Pointer(&g)), uintptr(i))
	if g == (ole.GUID{}) {
		return "", false
	}
	return guidString(g), true
}

// number maps d onto the library's current numbering
func (b *dynamicBackend) number(op string, d Desktop) (int, error) {
	if g, ok := parseGUID(d.ID); ok && b.getDesktopNumberByID != nil {
		n, err := b.call(op, b.getDesktopNumberByID, ErrDesktopNotFound, uintptr(unsafe.Pointer(&g)))
		return int(n), err
	}
	count, err := b.DesktopCount()
	if err != nil {
		return 0, err
	}
	if d.Index < 0 || d.Index >= count {
		return 0, callErr(KindDynamic, op, ErrDesktopNotFound, fmt.Errorf("desktop %d of %d", d.Number(), count))
	}
	return d.Index, nil
}

func (b *dynamicBackend) CurrentDesktop() (Desktop, error) {
	n, err := b.call("CurrentDesktop", b.getCurrentDesktopNumber, ErrBackendUnavailable)
	if err != nil {
		return Desktop{}, err
	}
	return b.describe(int(n)), nil
}

func (b *dynamicBackend) SwitchTo(d Desktop) error {
	n, err := b.number("SwitchTo", d)
	if err != nil {
		return err
	}
	_, err = b.call("SwitchTo", b.goToDesktopNumber, ErrDesktopNotFound, uintptr(n))
	return err
}

func (b *dynamicBackend) nameByNumber(i int) (string, error) {
	if b.getDesktopName == nil {
		return "", callErr(KindDynamic, "DesktopName", ErrUnsupported, nil)
	}
	buf := make([]byte, 512)
	r, _, _ := b.getDesktopName.Call(uintptr(i), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if int32(r) <= 0 {
		return "", callErr(KindDynamic, "DesktopName", ErrDesktopNotFound, fmt.Errorf("desktop %d", i+1))
	}
	return windows.ByteSliceToString(buf), nil
}

func (b *dynamicBackend) DesktopName(d Desktop) (string, error) {
	n, err := b.number("DesktopName", d)
	if err != nil {
		return "", err
	}
	return b.nameByNumber(n)
}

func (b *dynamicBackend) SetDesktopName(d Desktop, name string) error {
	n, err := b.number("SetDesktopName", d)
	if err != nil {
		return err
	}
	p, err := windows.BytePtrFromString(name)
	if err != nil {
		return callErr(KindDynamic, "SetDesktopName", ErrUnsupported, err)
	}
	_, err = b.call("SetDesktopName", b.setDesktopName, ErrDesktopNotFound, uintptr(n), uintptr(unsafe.Pointer(p)))
	return err
}

func (b *dynamicBackend) CreateDesktop() (Desktop, error) {
	n, err := b.call("CreateDesktop", b.createDesktop, ErrBackendUnavailable)
	if err != nil {
		return Desktop{}, err
	}
	return b.describe(int(n)), nil
}

func (b *dynamicBackend) RemoveDesktop(target, fallback Desktop) error {
	t, err := b.number("RemoveDesktop", target)
	if err != nil {
		return err
	}
	f, err := b.number("RemoveDesktop", fallback)
	if err != nil {
		return err
	}
	_, err = b.call("RemoveDesktop", b.removeDesktop, ErrDesktopNotFound, uintptr(t), uintptr(f))
	return err
}

func (b *dynamicBackend) checkWindow(op string, hwnd WindowHandle) error {
	if !isWindow(hwnd) {
		return callErr(KindDynamic, op, ErrWindowNotFound, fmt.Errorf("window %s", hwnd))
	}
	return nil
}

func (b *dynamicBackend) MoveWindow(hwnd WindowHandle, d Desktop) error {
	if err := b.checkWindow("MoveWindow", hwnd); err != nil {
		return err
	}
	n, err := b.number("MoveWindow", d)
	if err != nil {
		return err
	}
	_, err = b.call("MoveWindow", b.moveWindowToDesktopNumber, ErrWindowNotFound, uintptr(hwnd), uintptr(n))
	return err
}

func (b *dynamicBackend) WindowPlacement(hwnd WindowHandle) (Placement, error) {
	if err := b.checkWindow("WindowPlacement", hwnd); err != nil {
		return Placement{}, err
	}
	if v, err := b.call("WindowPlacement", b.isPinnedApp, ErrWindowNotFound, uintptr(hwnd)); err == nil && v == 1 {
		return Placement{Kind: PlacementAppPinned}, nil
	}
	if v, err := b.call("WindowPlacement", b.isPinnedWindow, ErrWindowNotFound, uintptr(hwnd)); err == nil && v == 1 {
		return Placement{Kind: PlacementWindowPinned}, nil
	}
	n, err := b.call("WindowPlacement", b.getWindowDesktopNumber, ErrWindowNotFound, uintptr(hwnd))
	if err != nil {
		return Placement{}, err
	}
	return Placement{Kind: PlacementDesktop, Desktop: b.describe(int(n))}, nil
}

func (b *dynamicBackend) PinWindow(hwnd WindowHandle) error {
	if err := b.checkWindow("PinWindow", hwnd); err != nil {
		return err
	}
	_, err := b.call("PinWindow", b.pinWindow, ErrWindowNotFound, uintptr(hwnd))
	return err
}

func (b *dynamicBackend) UnpinWindow(hwnd WindowHandle) error {
	if err := b.checkWindow("UnpinWindow", hwnd); err != nil {
		return err
	}
	_, err := b.call("UnpinWindow", b.unPinWindow, ErrWindowNotFound, uintptr(hwnd))
	return err
}

func (b *dynamicBackend) Close() error {
	return b.dll.Release()
}
