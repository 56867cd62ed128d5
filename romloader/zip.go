package romloader

import (
	"archive/zip"
	"fmt"

	"github.com/Andretti1967/asteroidino/emu"
)

// extractFromZIP reads every ROM image from a ZIP archive. MAME sets keep
// the images at the top level; sub directories are accepted too.
func extractFromZIP(path string) (map[string][]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	files := make(map[string][]byte)
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !emu.IsROMFile(f.Name) {
			continue
		}
		if f.UncompressedSize64 > maxROMSize {
			return nil, fmt.Errorf("%s: %w", f.Name, ErrFileTooLarge)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		files[f.Name] = data
	}
	return files, nil
}
