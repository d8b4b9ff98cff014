//go:build windows

package memlock

import "golang.org/x/sys/windows"

func lockPages(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return windows.VirtualLock(&buf[0], uintptr(len(buf)))
}

func unlockPages(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return windows.VirtualUnlock(&buf[0], uintptr(len(buf)))
}
