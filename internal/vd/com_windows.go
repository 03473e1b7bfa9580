//go:build windows

package vd

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

var (
	user32       = windows.NewLazySystemDLL("user32.dll")
	combase      = windows.NewLazySystemDLL("combase.dll")
	procIsWindow = user32.NewProc("IsWindow")

	procWindowsCreateString = combase.NewProc("WindowsCreateString")
	procWindowsDeleteString = combase.NewProc("WindowsDeleteString")
)

// HRESULTs the shell returns when an object has gone away
const (
	hrElementNotFound   = 0x8002802B // TYPE_E_ELEMENTNOTFOUND
	hrServerUnavailable = 0x800706BA // RPC_S_SERVER_UNAVAILABLE
	hrDisconnected      = 0x80010108 // RPC_E_DISCONNECTED
	hrCallFailed        = 0x800706BE // RPC_S_CALL_FAILED
	sFalse              = 0x00000001
)

// vtableCall invokes method index of a COM object
func vtableCall(obj *ole.IUnknown, index int, args ...uintptr) error {
	if obj == nil {
		return errors.New("nil COM object")
	}
	vtbl := (*[64]uintptr)(unsafe.Pointer(obj.RawVTable))
	all := append([]uintptr{uintptr(unsafe.Pointer(obj))}, args...)
	hr, _, _ := syscall.SyscallN(vtbl[index], all...)
	if int32(hr) < 0 {
		return ole.NewError(hr)
	}
	return nil
}

func release(objs ...*ole.IUnknown) {
	for _, o := range objs {
		if o != nil {
			o.Release()
		}
	}
}

// classifyHRESULT maps a COM failure onto an error kind. Only failures that
// mean the shell connection is gone are ErrBackendUnavailable; anything else
// is a failure of this one call.
func classifyHRESULT(err error, notFound error) error {
	var oleErr *ole.OleError
	if !errors.As(err, &oleErr) {
		return ErrOperationFailed
	}
	switch uint32(oleErr.Code()) {
	case hrElementNotFound:
		return notFound
	case hrServerUnavailable, hrDisconnected, hrCallFailed:
		return ErrBackendUnavailable
	}
	return ErrOperationFailed
}

func guidString(g ole.GUID) string {
	return fmt.Sprintf("{%08X-%04X-%04X-%02X%02X-%02X%02X%02X%02X%02X%02X}",
		g.Data1, g.Data2, g.Data3,
		g.Data4[0], g.Data4[1], g.Data4[2], g.Data4[3],
		g.Data4[4], g.Data4[5], g.Data4[6], g.Data4[7])
}

func parseGUID(id string) (ole.GUID, bool) {
	s := strings.TrimSpace(id)
	if !strings.HasPrefix(s, "{") {
		s = "{" + s + "}"
	}
	g := ole.NewGUID(s)
	if g == nil {
		return ole.GUID{}, false
	}
	return *g, true
}

func isWindow(hwnd WindowHandle) bool {
	r, _, _ := procIsWindow.Call(uintptr(hwnd))
	return r != 0
}

// hstring wraps a WinRT string handle
type hstring uintptr

func newHString(s string) (hstring, error) {
	u, err := windows.UTF16FromString(s)
	if err != nil {
		return 0, err
	}
	var h hstring
	hr, _, _ := procWindowsCreateString.Call(uintptr(unsafe.Pointer(&u[0])), uintptr(len(u)-1), uintptr(unsafe.Pointer(&h)))
	if int32(hr) < 0 {
		return 0, ole.NewError(hr)
	}
	return h, nil
}

func (h hstring) free() {
	if h != 0 {
		procWindowsDeleteString.Call(uintptr(h))
	}
}

// ThreadSetup joins the coordination thread to a single-threaded apartment
func ThreadSetup() error {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if errors.As(err, &oleErr) && oleErr.Code() == sFalse {
			return nil
		}
		return err
	}
	return nil
}

// ThreadTeardown leaves the apartment joined by ThreadSetup
func ThreadTeardown() {
	ole.CoUninitialize()
}

func platformOptions() SelectOptions {
	return SelectOptions{
		Exists:      fileExists,
		LoadDynamic: loadDynamic,
		NewStatic:   newStatic,
	}
}
