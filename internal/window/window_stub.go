//go:build !cgo && !windows && !darwin

package window

import (
	"context"
	"errors"

	"github.com/oblq/gauge/internal/control"
)

// Run needs cgo for the window backend on this platform, use control.RunHeadless without it.
func Run(ctx context.Context, ctl *control.Controller, opts control.RunOptions) error {
	return errors.New("window support not compiled in (cgo disabled), run with --headless")
}
