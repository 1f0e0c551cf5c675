package renderer

import (
	"errors"
	"fmt"
	"strings"
)

// Surface acquisition failures. BeginFrame wraps one of these so callers can apply the
// frame policy with errors.Is.
var (
	// ErrSurfaceLost means the surface must be reconfigured before use.
	ErrSurfaceLost = errors.New("surface lost")

	// ErrSurfaceOutdated means the surface no longer matches the window and must be reconfigured.
	ErrSurfaceOutdated = errors.New("surface outdated")

	// ErrSurfaceTimeout means no texture became available in time. The frame is skipped.
	ErrSurfaceTimeout = errors.New("surface timeout")

	// ErrSurfaceOutOfMemory means the device cannot allocate the next texture. Fatal.
	ErrSurfaceOutOfMemory = errors.New("surface out of memory")

	// ErrSurfaceBusy means the previous frame's texture has not been presented yet.
	ErrSurfaceBusy = errors.New("previous surface texture not presented")
)

// surfaceStatusKeywords maps status text reported by the native surface to a sentinel.
// Order matters: "out of memory" must be checked before the shorter keywords.
var surfaceStatusKeywords = []struct {
	keywords []string
	sentinel error
}{
	{[]string{"outofmemory", "out of memory", "out_of_memory"}, ErrSurfaceOutOfMemory},
	{[]string{"outdated"}, ErrSurfaceOutdated},
	{[]string{"lost"}, ErrSurfaceLost},
	{[]string{"timeout", "timed out"}, ErrSurfaceTimeout},
}

// classifySurfaceError wraps err with the sentinel its status text names. Errors that name
// no known status are returned unchanged.
//
// Parameters:
//   - err: the error returned by the surface
//
// Returns:
//   - error: err wrapped with a sentinel, err itself, or nil when err is nil
func classifySurfaceError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, s := range surfaceStatusKeywords {
		for _, kw := range s.keywords {
			if strings.Contains(msg, kw) {
				return fmt.Errorf("%w: %w", s.sentinel, err)
			}
		}
	}
	return err
}

// IsSurfaceRecoverable reports whether reconfiguring the surface can fix err.
func IsSurfaceRecoverable(err error) bool {
	return errors.Is(err, ErrSurfaceLost) || errors.Is(err, ErrSurfaceOutdated)
}
