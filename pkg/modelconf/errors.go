package modelconf

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRunMode matches any *InvalidRunModeError via errors.Is.
var ErrInvalidRunMode = errors.New("invalid run mode")

// InvalidRunModeError is returned when run mode text does not match LOCAL,
// DIST or MAPRED in any letter case.
type InvalidRunModeError struct {
	Value string
}

func (e *InvalidRunModeError) Error() string {
	names := make([]string, 0, len(runModeNames))
	for _, m := range RunModes() {
		names = append(names, m.String())
	}
	return fmt.Sprintf("invalid run mode %q: expected one of %s", e.Value, strings.Join(names, ", "))
}

// Is reports whether target is ErrInvalidRunMode.
func (e *InvalidRunModeError) Is(target error) bool {
	return target == ErrInvalidRunMode
}
