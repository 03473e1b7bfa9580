package vd

import (
	"fmt"
	"strings"
)

// Kind identifies which backend implementation is active
type Kind string

const (
	KindStatic  Kind = "static"
	KindDynamic Kind = "dynamic"
)

// Desktop is one virtual desktop as seen in a single snapshot.
// ID is stable for the backend that produced it; Index is zero-based and is
// only meaningful relative to the snapshot it came from.
type Desktop struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
}

// Number returns the one-based display index
func (d Desktop) Number() int {
	return d.Index + 1
}

// Label renders the desktop for humans. Absent names are left out.
func (d Desktop) Label() string {
	if d.Name == "" {
		return fmt.Sprintf("%d", d.Number())
	}
	return fmt.Sprintf("%d: %s", d.Number(), d.Name)
}

// SameDesktop reports whether a and b refer to the same desktop
func SameDesktop(a, b Desktop) bool {
	if a.ID != "" && b.ID != "" {
		return strings.EqualFold(a.ID, b.ID)
	}
	return a.Index == b.Index
}

// WindowHandle is an OS window handle. The OS owns its lifetime.
type WindowHandle uintptr

func (h WindowHandle) String() string {
	return fmt.Sprintf("0x%X", uintptr(h))
}

// PlacementKind describes where a window lives
type PlacementKind string

const (
	PlacementDesktop      PlacementKind = "desktop"
	PlacementWindowPinned PlacementKind = "window-pinned"
	PlacementAppPinned    PlacementKind = "app-pinned"
)

// Placement is a window's desktop membership
type Placement struct {
	Kind    PlacementKind `json:"kind"`
	Desktop Desktop       `json:"desktop"`
}

// Pinned reports whether the window shows on every desktop
func (p Placement) Pinned() bool {
	return p.Kind == PlacementWindowPinned || p.Kind == PlacementAppPinned
}

func (p Placement) String() string {
	switch p.Kind {
	case PlacementWindowPinned:
		return "pinned"
	case PlacementAppPinned:
		return "app pinned"
	default:
		return p.Desktop.Label()
	}
}

// ResolveIndex finds the desktop with the zero-based index in desktops
func ResolveIndex(desktops []Desktop, index int) (Desktop, error) {
	for _, d := range desktops {
		if d.Index == index {
			return d, nil
		}
	}
	return Desktop{}, &CallError{
		Op:   "resolve",
		Kind: ErrDesktopNotFound,
		Err:  fmt.Errorf("desktop %d does not exist (count %d)", index+1, len(desktops)),
	}
}

// ResolveID finds the desktop with the given identifier in desktops
func ResolveID(desktops []Desktop, id string) (Desktop, error) {
	want := NormalizeID(id)
	for _, d := range desktops {
		if NormalizeID(d.ID) == want {
			return d, nil
		}
	}
	return Desktop{}, &CallError{
		Op:   "resolve",
		Kind: ErrDesktopNotFound,
		Err:  fmt.Errorf("desktop %s does not exist", id),
	}
}

// NormalizeID lowercases and strips braces so GUID spellings compare equal
func NormalizeID(id string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(id), "{}"))
}
