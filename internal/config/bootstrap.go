package config

import (
	"errors"
	"os"

	"github.com/rotisserie/eris"
)

// EnsureUserConfig writes the defaults to path unless a file already
// exists there. It reports whether it created one.
func EnsureUserConfig(path string) (created bool, err error) {
	_, err = os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, eris.Wrapf(err, "config: stat %s", path)
	}
	if err := SaveAtomic(path, Default()); err != nil {
		return false, err
	}
	return true, nil
}
