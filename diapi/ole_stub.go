//go:build !windows

package diapi

import (
	"errors"

	"b1bridge/config"
)

// Dial is only available on Windows, where the DI API COM server runs in
// process with the bridge.
func Dial(cfg config.SAPConfig) (Company, error) {
	return nil, errors.New("diapi: DI API connections require windows")
}
