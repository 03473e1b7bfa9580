//go:build windows

package window

import (
	"runtime"
	"sync"
	"testing"

	"golang.org/x/sys/windows"
)

func TestEnumerateConcurrent(t *testing.T) {
	const callers = 8

	results := make([][]windows.HWND, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Force stack growth around the call
			grow(64)
			results[i], errs[i] = enumerate()
			runtime.GC()
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("enumerate() error = %v", errs[i])
		}
		if len(results[i]) == 0 {
			t.Errorf("caller %d saw no top-level windows", i)
		}
		seen := make(map[windows.HWND]bool, len(results[i]))
		for _, h := range results[i] {
			if seen[h] {
				t.Errorf("caller %d saw window %v twice", i, h)
				break
			}
			seen[h] = true
		}
	}
}

func grow(depth int) int {
	var pad [256]byte
	if depth == 0 {
		return len(pad)
	}
	return grow(depth-1) + int(pad[depth%len(pad)])
}
