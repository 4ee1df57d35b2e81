package synchronizer

import (
	"context"
	"errors"
	"net"
	"os"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

// IsTransient reports whether err is a timeout-class failure that the next
// tick is expected to recover from.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, models.ErrTransientFetch) || os.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
