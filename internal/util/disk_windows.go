//go:build windows

package util

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// FreeSpace returns the bytes available to the caller on the volume holding path.
func FreeSpace(path string) (uint64, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	var avail, total, free uint64
	if err := windows.GetDiskFreeSpaceEx(p, &avail, &total, &free); err != nil {
		return 0, fmt.Errorf("GetDiskFreeSpaceEx %s: %w", path, err)
	}
	return avail, nil
}
