// Package rom loads program images into interpreter memory.
package rom

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gochip8/pkg/memory"
)

// MaxSize is the largest image that fits between the program start and the
// end of RAM.
const MaxSize = memory.RAMSize - int(memory.ProgramStart)

var ErrRomLoad = errors.New("loading rom")

// Load copies data into mem at the program start.
func Load(mem *memory.Memory, data []byte) error {
	if len(data) > MaxSize {
		return fmt.Errorf("%w: image is %d bytes, at most %d fit in memory", ErrRomLoad, len(data), MaxSize)
	}
	mem.WriteRAM(memory.ProgramStart, data)
	return nil
}

// LoadFile reads the file at path and loads it like Load. It returns the
// resolved absolute path for logging.
func LoadFile(mem *memory.Memory, path string) (string, error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRomLoad, err)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return fullPath, fmt.Errorf("%w: %w", ErrRomLoad, err)
	}
	if err := Load(mem, data); err != nil {
		return fullPath, err
	}
	return fullPath, nil
}

// GetPathInfo resolves relPath to an absolute path and its directory.
func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	parentDir = filepath.Dir(fullPath)
	return fullPath, parentDir, nil
}
