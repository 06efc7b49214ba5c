package poll

import (
	"fmt"

	"github.com/aryankumar/esadmin/internal/util"
)

// ErrClusterUnavailable is matched by every ClusterUnavailableError
var ErrClusterUnavailable = util.ErrClusterUnavailable

// ClusterUnavailableError is returned when every health attempt timed out
type ClusterUnavailableError struct {
	Attempts int
	Indices  []string
}

// Error implements the error interface
func (e *ClusterUnavailableError) Error() string {
	if len(e.Indices) > 0 {
		return fmt.Sprintf("cluster unavailable: health for %v timed out on all %d attempts", e.Indices, e.Attempts)
	}
	return fmt.Sprintf("cluster unavailable: health timed out on all %d attempts", e.Attempts)
}

// Is reports whether target is ErrClusterUnavailable
func (e *ClusterUnavailableError) Is(target error) bool {
	return target == ErrClusterUnavailable
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", util.ErrCancelled, err)
}
