//go:build windows

package reverseaudio

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func lockSamples(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}
	return windows.VirtualLock(uintptr(unsafe.Pointer(unsafe.SliceData(samples))), uintptr(len(samples)*4))
}

func unlockSamples(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}
	return windows.VirtualUnlock(uintptr(unsafe.Pointer(unsafe.SliceData(samples))), uintptr(len(samples)*4))
}
