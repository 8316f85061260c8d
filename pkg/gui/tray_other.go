//go:build !darwin && !windows

package gui

import (
	pkgerrors "github.com/pkg/errors"
)

// Run is only available on macOS and Windows.
func Run() error {
	return pkgerrors.New("the tray is only available on macOS and Windows")
}
