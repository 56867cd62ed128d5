package romloader

import (
	"fmt"
	"io"

	"github.com/Andretti1967/asteroidino/emu"
	"github.com/nwaples/rardecode/v2"
)

// extractFromRAR reads every ROM image from a RAR archive
func extractFromRAR(path string) (map[string][]byte, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rar: %w", err)
	}
	defer r.Close()

	files := make(map[string][]byte)
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rar entry: %w", err)
		}
		if header.IsDir || !emu.IsROMFile(header.Name) {
			continue
		}

		data, err := limitedRead(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		files[header.Name] = data
	}
	return files, nil
}
