//go:build !unix

package shell

import (
	"errors"
	"os"
)

func foregroundProcessGroup(_ *os.File) (int, error) {
	return 0, errors.ErrUnsupported
}
