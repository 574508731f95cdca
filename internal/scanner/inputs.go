package scanner

import (
	"errors"
	"sort"
)

// ErrNoBinaryInputs is returned when there is nothing to scan
var ErrNoBinaryInputs = errors.New("no class files or build output directories to scan")

// BinaryInputs returns the explicit class files when any are given, otherwise the
// build output directories in sorted order.
func BinaryInputs(classFiles, classesDirectories []string) ([]string, error) {
	if len(classFiles) > 0 {
		return append([]string(nil), classFiles...), nil
	}
	if len(classesDirectories) == 0 {
		return nil, ErrNoBinaryInputs
	}
	dirs := append([]string(nil), classesDirectories...)
	sort.Strings(dirs)
	return dirs, nil
}
