//go:build headless

package audio

import "errors"

func newOtoBackend(*Driver, Options) (backend, error) {
	return nil, errors.New("audio: built without a device backend, use the null or manual backend")
}
