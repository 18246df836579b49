package resolve

import (
	"fmt"
	"runtime"

	"github.com/vishvananda/netns"
)

// withNetNS runs fn inside a named network namespace, restoring the original
// namespace afterwards. The OS thread is locked for the duration because
// namespace membership is per-thread.
func withNetNS(name string, fn func() error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// Save reference to current namespace so we can return to it
	origNS, err := netns.Get()
	if err != nil {
		return fmt.Errorf("getting current namespace: %w", err)
	}
	defer origNS.Close()
	defer netns.Set(origNS)

	nsHandle, err := netns.GetFromName(name)
	if err != nil {
		return fmt.Errorf("opening namespace %s: %w", name, err)
	}
	defer nsHandle.Close()

	if err := netns.Set(nsHandle); err != nil {
		return fmt.Errorf("switching to namespace: %w", err)
	}

	return fn()
}
