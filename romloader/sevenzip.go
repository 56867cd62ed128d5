package romloader

import (
	"fmt"

	"github.com/Andretti1967/asteroidino/emu"
	"github.com/bodgit/sevenzip"
)

// extractFrom7z reads every ROM image from a 7z archive
func extractFrom7z(path string) (map[string][]byte, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z: %w", err)
	}
	defer r.Close()

	files := make(map[string][]byte)
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !emu.IsROMFile(f.Name) {
			continue
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
