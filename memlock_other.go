//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly) && !windows

package reverseaudio

func lockSamples([]float32) error   { return nil }
func unlockSamples([]float32) error { return nil }
