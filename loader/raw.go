// Package loader reads the raw RV64I binary image the hart boots from.
// There is no ELF format in scope here: original_source itself loads a
// flat byte slice read straight off disk, and this loader preserves
// that shape.
package loader

import (
	"fmt"
	"os"
)

// Load reads the entire file at path into memory. The returned bytes
// are placed at DRAMBase by the caller; this loader has no opinion
// about segments, entry points, or memory layout beyond that.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image file %q is empty", path)
	}
	return data, nil
}
