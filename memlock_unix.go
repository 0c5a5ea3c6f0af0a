//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package reverseaudio

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func sampleBytes(samples []float32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(samples))), len(samples)*4)
}

func lockSamples(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}
	return unix.Mlock(sampleBytes(samples))
}

func unlockSamples(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}
	return unix.Munlock(sampleBytes(samples))
}
