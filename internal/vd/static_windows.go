//go:build windows

package vd

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/yourusername/vdm-cli/internal/logging"
)

var (
	clsidImmersiveShell           = ole.NewGUID("{C2F03A33-21F5-47FA-B4BB-156362A2F239}")
	iidServiceProvider            = ole.NewGUID("{6D5140C1-7436-11CE-8034-00AA006009FA}")
	clsidVirtualDesktopManagerInt = ole.NewGUID("{C5E0CDCA-7B6E-41B2-9FC4-D93975CC467B}")
	clsidVirtualDesktopPinnedApps = ole.NewGUID("{B5A399E7-1C87-46B8-88E9-FC5747B171BD}")
	iidVirtualDesktopPinnedApps   = ole.NewGUID("{4CE81583-1E4C-4632-A621-07A53543148F}")
	iidApplicationViewCollection  = ole.NewGUID("{1841C6D7-4F9D-42C0-AF41-8747538F10E5}")
	clsidVirtualDesktopManager    = ole.NewGUID("{AA509086-5CA9-4C25-8F95-589D3C07B48A}")
	iidVirtualDesktopManager      = ole.NewGUID("{A5CD92FF-29BE-454C-8D04-D82879FB3F1B}")
)

const explorerKey = `Software\Microsoft\Windows\CurrentVersion\Explorer`

// shellLayout describes one build family of the internal desktop interfaces
type shellLayout struct {
	name       string
	iidManager *ole.GUID
	iidDesktop *ole.GUID

	getCount, moveView, getCurrent, getDesktops int
	switchDesktop, createDesktop, removeDesktop int
	findDesktop, setName                        int // setName < 0: unsupported
}

var shellLayouts = []shellLayout{
	{
		name:          "windows11",
		iidManager:    ole.NewGUID("{53F5CA0B-158F-4124-900C-057158060B27}"),
		iidDesktop:    ole.NewGUID("{3F07F4BE-B107-441A-AF0F-39D82529072C}"),
		getCount:      3,
		moveView:      4,
		getCurrent:    6,
		getDesktops:   7,
		switchDesktop: 9,
		createDesktop: 11,
		removeDesktop: 13,
		findDesktop:   14,
		setName:       16,
	},
	{
		name:          "windows10",
		iidManager:    ole.NewGUID("{F31574D6-B682-4CDC-BD56-1827860ABEC6}"),
		iidDesktop:    ole.NewGUID("{FF72FFDD-BE7E-43FC-9C03-AD81681E88E4}"),
		getCount:      3,
		moveView:      4,
		getCurrent:    6,
		getDesktops:   7,
		switchDesktop: 9,
		createDesktop: 10,
		removeDesktop: 11,
		findDesktop:   12,
		setName:       -1,
	},
}

// Method indices shared across builds
const (
	spQueryService        = 3
	oaGetCount            = 3
	oaGetAt               = 4
	vdGetID               = 4
	avcGetViewForHwnd     = 6
	avGetAppUserModelID   = 17
	paIsAppIDPinned       = 3
	paIsViewPinned        = 6
	paPinView             = 7
	paUnpinView           = 8
	vdmGetWindowDesktopID = 4
)

// staticBackend drives the shell's desktop manager over COM.
// Every method must run on the thread that called ThreadSetup.
type staticBackend struct {
	layout   shellLayout
	provider *ole.IUnknown
	manager  *ole.IUnknown
	views    *ole.IUnknown
	pinned   *ole.IUnknown
	public   *ole.IUnknown
}

func newStatic() (Backend, error) {
	b := &staticBackend{}
	if err := b.connect(); err != nil {
		return nil, err
	}
	logging.Info().Str("layout", b.layout.name).Msg("connected to desktop manager")
	return b, nil
}

func queryService(provider *ole.IUnknown, service, iid *ole.GUID) (*ole.IUnknown, error) {
	var out *ole.IUnknown
	err := vtableCall(provider, spQueryService,
		uintptr(unsafe.Pointer(service)),
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&out)))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// connect acquires the shell services. Called again after explorer restarts.
func (b *staticBackend) connect() error {
	b.disconnect()

	provider, err := ole.CreateInstance(clsidImmersiveShell, iidServiceProvider)
	if err != nil {
		return callErr(KindStatic, "connect", ErrBackendUnavailable, err)
	}

	var lastErr error
	for _, layout := range shellLayouts {
		manager, err := queryService(provider, clsidVirtualDesktopManagerInt, layout.iidManager)
		if err != nil {
			lastErr = err
			continue
		}
		b.layout = layout
		b.manager = manager
		break
	}
	if b.manager == nil {
		release(provider)
		return callErr(KindStatic, "connect", ErrBackendUnavailable, fmt.Errorf("no supported desktop manager interface: %w", lastErr))
	}
	b.provider = provider

	if b.views, err = queryService(provider, iidApplicationViewCollection, iidApplicationViewCollection); err != nil {
		logging.Warn().Err(err).Msg("application view collection unavailable")
	}
	if b.pinned, err = queryService(provider, clsidVirtualDesktopPinnedApps, iidVirtualDesktopPinnedApps); err != nil {
		logging.Warn().Err(err).Msg("pinned apps service unavailable")
	}
	if b.public, err = ole.CreateInstance(clsidVirtualDesktopManager, iidVirtualDesktopManager); err != nil {
		logging.Warn().Err(err).Msg("public desktop manager unavailable")
	}
	return nil
}

func (b *staticBackend) disconnect() {
	release(b.public, b.pinned, b.views, b.manager, b.provider)
	b.public, b.pinned, b.views, b.manager, b.provider = nil, nil, nil, nil, nil
}

// fail classifies err and drops the connection when the shell went away
func (b *staticBackend) fail(op string, err error, notFound error) error {
	kind := classifyHRESULT(err, notFound)
	if kind == ErrBackendUnavailable {
		b.disconnect()
	}
	return callErr(KindStatic, op, kind, err)
}

func (b *staticBackend) ready(op string) error {
	if b.manager != nil {
		return nil
	}
	if err := b.connect(); err != nil {
		return callErr(KindStatic, op, ErrBackendUnavailable, err)
	}
	return nil
}

func (b *staticBackend) Kind() Kind { return KindStatic }

func (b *staticBackend) desktopID(obj *ole.IUnknown) (ole.GUID, error) {
	var g ole.GUID
	err := vtableCall(obj, vdGetID, uintptr(unsafe.Pointer(&g)))
	return g, err
}

func (b *staticBackend) desktopIDs() ([]ole.GUID, error) {
	var arr *ole.IUnknown
	if err := vtableCall(b.manager, b.layout.getDesktops, uintptr(unsafe.Pointer(&arr))); err != nil {
		return nil, err
	}
	defer release(arr)

	var count uint32
	if err := vtableCall(arr, oaGetCount, uintptr(unsafe.Pointer(&count))); err != nil {
		return nil, err
	}

	ids := make([]ole.GUID, 0, count)
	for i := uint32(0); i < count; i++ {
		var desk *ole.IUnknown
		if err := vtableCall(arr, oaGetAt, uintptr(i), uintptr(unsafe.Pointer(b.layout.iidDesktop)), uintptr(unsafe.Pointer(&desk))); err != nil {
			return nil, err
		}
		g, err := b.desktopID(desk)
		release(desk)
		if err != nil {
			return nil, err
		}
		ids = append(ids, g)
	}
	return ids, nil
}

func (b *staticBackend) Desktops() ([]Desktop, error) {
	if err := b.ready("Desktops"); err != nil {
		return nil, err
	}
	ids, err := b.desktopIDs()
	if err != nil {
		return nil, b.fail("Desktops", err, ErrDesktopNotFound)
	}

	desktops := make([]Desktop, len(ids))
	for i, g := range ids {
		id := guidString(g)
		desktops[i] = Desktop{ID: id, Index: i, Name: registryDesktopName(id)}
	}
	return desktops, nil
}

func (b *staticBackend) DesktopCount() (int, error) {
	if err := b.ready("DesktopCount"); err != nil {
		return 0, err
	}
	var count int32
	if err := vtableCall(b.manager, b.layout.getCount, uintptr(unsafe.Pointer(&count))); err != nil {
		return 0, b.fail("DesktopCount", err, ErrDesktopNotFound)
	}
	return int(count), nil
}

func (b *staticBackend) CurrentDesktop() (Desktop, error) {
	if err := b.ready("CurrentDesktop"); err != nil {
		return Desktop{}, err
	}
	var desk *ole.IUnknown
	if err := vtableCall(b.manager, b.layout.getCurrent, uintptr(unsafe.Pointer(&desk))); err != nil {
		return Desktop{}, b.fail("CurrentDesktop", err, ErrDesktopNotFound)
	}
	g, err := b.desktopID(desk)
	release(desk)
	if err != nil {
		return Desktop{}, b.fail("CurrentDesktop", err, ErrDesktopNotFound)
	}
	return b.describe(g)
}

// describe turns a desktop id into a Desktop with its current index
func (b *staticBackend) describe(g ole.GUID) (Desktop, error) {
	desktops, err := b.Desktops()
	if err != nil {
		return Desktop{}, err
	}
	return ResolveID(desktops, guidString(g))
}

// find returns the desktop object for d, preferring its identifier
func (b *staticBackend) find(op string, d Desktop) (*ole.IUnknown, error) {
	if err := b.ready(op); err != nil {
		return nil, err
	}
	g, ok := parseGUID(d.ID)
	if !ok {
		ids, err := b.desktopIDs()
		if err != nil {
			return nil, b.fail(op, err, ErrDesktopNotFound)
		}
		if d.Index < 0 || d.Index >= len(ids) {
			return nil, callErr(KindStatic, op, ErrDesktopNotFound, fmt.Errorf("desktop %d", d.Number()))
		}
		g = ids[d.Index]
	}

	var desk *ole.IUnknown
	if err := vtableCall(b.manager, b.layout.findDesktop, uintptr(unsafe.Pointer(&g)), uintptr(unsafe.Pointer(&desk))); err != nil {
		return nil, b.fail(op, err, ErrDesktopNotFound)
	}
	return desk, nil
}

func (b *staticBackend) SwitchTo(d Desktop) error {
	desk, err := b.find("SwitchTo", d)
	if err != nil {
		return err
	}
	defer release(desk)
	if err := vtableCall(b.manager, b.layout.switchDesktop, uintptr(unsafe.Pointer(desk))); err != nil {
		return b.fail("SwitchTo", err, ErrDesktopNotFound)
	}
	return nil
}

func (b *staticBackend) DesktopName(d Desktop) (string, error) {
	if _, ok := parseGUID(d.ID); ok {
		return registryDesktopName(d.ID), nil
	}
	desktops, err := b.Desktops()
	if err != nil {
		return "", err
	}
	found, err := ResolveIndex(desktops, d.Index)
	if err != nil {
		return "", err
	}
	return found.Name, nil
}

func (b *staticBackend) SetDesktopName(d Desktop, name string) error {
	if b.layout.setName < 0 {
		return callErr(KindStatic, "SetDesktopName", ErrUnsupported, fmt.Errorf("%s shell", b.layout.name))
	}
	desk, err := b.find("SetDesktopName", d)
	if err != nil {
		return err
	}
	defer release(desk)

	h, err := newHString(name)
	if err != nil {
		return callErr(KindStatic, "SetDesktopName", ErrOperationFailed, err)
	}
	defer h.free()

	if err := vtableCall(b.manager, b.layout.setName, uintptr(unsafe.Pointer(desk)), uintptr(h)); err != nil {
		return b.fail("SetDesktopName", err, ErrDesktopNotFound)
	}
	return nil
}

func (b *staticBackend) CreateDesktop() (Desktop, error) {
	if err := b.ready("CreateDesktop"); err != nil {
		return Desktop{}, err
	}
	var desk *ole.IUnknown
	if err := vtableCall(b.manager, b.layout.createDesktop, uintptr(unsafe.Pointer(&desk))); err != nil {
		return Desktop{}, b.fail("CreateDesktop", err, ErrDesktopNotFound)
	}
	g, err := b.desktopID(desk)
	release(desk)
	if err != nil {
		return Desktop{}, b.fail("CreateDesktop", err, ErrDesktopNotFound)
	}
	return b.describe(g)
}

func (b *staticBackend) RemoveDesktop(target, fallback Desktop) error {
	desk, err := b.find("RemoveDesktop", target)
	if err != nil {
		return err
	}
	defer release(desk)
	fb, err := b.find("RemoveDesktop", fallback)
	if err != nil {
		return err
	}
	defer release(fb)

	if err := vtableCall(b.manager, b.layout.removeDesktop, uintptr(unsafe.Pointer(desk)), uintptr(unsafe.Pointer(fb))); err != nil {
		return b.fail("RemoveDesktop", err, ErrDesktopNotFound)
	}
	return nil
}

// view returns the application view for hwnd
func (b *staticBackend) view(op string, hwnd WindowHandle) (*ole.IUnknown, error) {
	if !isWindow(hwnd) {
		return nil, callErr(KindStatic, op, ErrWindowNotFound, fmt.Errorf("window %s", hwnd))
	}
	if err := b.ready(op); err != nil {
		return nil, err
	}
	if b.views == nil {
		return nil, callErr(KindStatic, op, ErrUnsupported, errors.New("application view collection unavailable"))
	}
	var view *ole.IUnknown
	if err := vtableCall(b.views, avcGetViewForHwnd, uintptr(hwnd), uintptr(unsafe.Pointer(&view))); err != nil {
		return nil, b.fail(op, err, ErrWindowNotFound)
	}
	return view, nil
}

func (b *staticBackend) MoveWindow(hwnd WindowHandle, d Desktop) error {
	view, err := b.view("MoveWindow", hwnd)
	if err != nil {
		return err
	}
	defer release(view)
	desk, err := b.find("MoveWindow", d)
	if err != nil {
		return err
	}
	defer release(desk)

	if err := vtableCall(b.manager, b.layout.moveView, uintptr(unsafe.Pointer(view)), uintptr(unsafe.Pointer(desk))); err != nil {
		return b.fail("MoveWindow", err, ErrWindowNotFound)
	}
	return nil
}

func (b *staticBackend) WindowPlacement(hwnd WindowHandle) (Placement, error) {
	view, err := b.view("WindowPlacement", hwnd)
	if err != nil {
		return Placement{}, err
	}
	defer release(view)

	if b.pinned != nil {
		if b.appPinned(view) {
			return Placement{Kind: PlacementAppPinned}, nil
		}
		var pinned int32
		if err := vtableCall(b.pinned, paIsViewPinned, uintptr(unsafe.Pointer(view)), uintptr(unsafe.Pointer(&pinned))); err == nil && pinned != 0 {
			return Placement{Kind: PlacementWindowPinned}, nil
		}
	}

	if b.public == nil {
		return Placement{}, callErr(KindStatic, "WindowPlacement", ErrUnsupported, errors.New("public desktop manager unavailable"))
	}
	var g ole.GUID
	if err := vtableCall(b.public, vdmGetWindowDesktopID, uintptr(hwnd), uintptr(unsafe.Pointer(&g))); err != nil {
		return Placement{}, b.fail("WindowPlacement", err, ErrWindowNotFound)
	}
	d, err := b.describe(g)
	if err != nil {
		return Placement{}, err
	}
	return Placement{Kind: PlacementDesktop, Desktop: d}, nil
}

func (b *staticBackend) appPinned(view *ole.IUnknown) bool {
	var appID *uint16
	if err := vtableCall(view, avGetAppUserModelID, uintptr(unsafe.Pointer(&appID))); err != nil || appID == nil {
		return false
	}
	defer windows.CoTaskMemFree(unsafe.Pointer(appID))

	var pinned int32
	if err := vtableCall(b.pinned, paIsAppIDPinned, uintptr(unsafe.Pointer(appID)), uintptr(unsafe.Pointer(&pinned))); err != nil {
		return false
	}
	return pinned != 0
}

func (b *staticBackend) PinWindow(hwnd WindowHandle) error {
	return b.pinOp("PinWindow", hwnd, paPinView)
}

func (b *staticBackend) UnpinWindow(hwnd WindowHandle) error {
	return b.pinOp("UnpinWindow", hwnd, paUnpinView)
}

func (b *staticBackend) pinOp(op string, hwnd WindowHandle, method int) error {
	view, err := b.view(op, hwnd)
	if err != nil {
		return err
	}
	defer release(view)
	if b.pinned == nil {
		return callErr(KindStatic, op, ErrUnsupported, errors.New("pinned apps service unavailable"))
	}
	if err := vtableCall(b.pinned, method, uintptr(unsafe.Pointer(view))); err != nil {
		return b.fail(op, err, ErrWindowNotFound)
	}
	return nil
}

func (b *staticBackend) Close() error {
	b.disconnect()
	return nil
}

// Subscribe waits on registry change notifications for the desktop keys.
// It opens its own keys and never touches the COM objects.
func (b *staticBackend) Subscribe(ctx context.Context, fn func()) error {
	paths := []string{explorerKey + `\VirtualDesktops`, explorerKey + `\SessionInfo`}

	var (
		keys   []registry.Key
		events []windows.Handle
	)
	defer func() {
		for _, k := range keys {
			k.Close()
		}
		for _, e := range events {
			windows.CloseHandle(e)
		}
	}()

	for _, p := range paths {
		k, err := registry.OpenKey(registry.CURRENT_USER, p, registry.NOTIFY|registry.QUERY_VALUE)
		if err != nil {
			logging.Debug().Err(err).Str("key", p).Msg("desktop key not watchable")
			continue
		}
		e, err := windows.CreateEvent(nil, 0, 0, nil)
		if err != nil {
			k.Close()
			return callErr(KindStatic, "Subscribe", ErrBackendUnavailable, err)
		}
		keys = append(keys, k)
		events = append(events, e)
	}
	if len(keys) == 0 {
		return callErr(KindStatic, "Subscribe", ErrUnsupported, errors.New("no desktop registry keys"))
	}

	const filter = windows.REG_NOTIFY_CHANGE_NAME | windows.REG_NOTIFY_CHANGE_LAST_SET
	arm := func(i int) error {
		return windows.RegNotifyChangeKeyValue(windows.Handle(keys[i]), true, filter, events[i], true)
	}
	for i := range keys {
		if err := arm(i); err != nil {
			return callErr(KindStatic, "Subscribe", ErrBackendUnavailable, err)
		}
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Short waits so cancellation is noticed without a separate wake event
		r, err := windows.WaitForMultipleObjects(events, false, 250)
		if err != nil {
			return callErr(KindStatic, "Subscribe", ErrBackendUnavailable, err)
		}
		if r == uint32(windows.WAIT_TIMEOUT) {
			continue
		}
		i := int(r - windows.WAIT_OBJECT_0)
		if i < 0 || i >= len(events) {
			continue
		}
		if err := arm(i); err != nil {
			return callErr(KindStatic, "Subscribe", ErrBackendUnavailable, err)
		}
		fn()
	}
}

// registryDesktopName reads the user-assigned name of a desktop, if any
func registryDesktopName(id string) string {
	k, err := registry.OpenKey(registry.CURRENT_USER, explorerKey+`\VirtualDesktops\Desktops\`+id, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer k.Close()
	name, _, err := k.GetStringValue("Name")
	if err != nil {
		return ""
	}
	return name
}
