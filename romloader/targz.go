package romloader

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Andretti1967/asteroidino/emu"
)

// A gzip stream is decompressed into memory before the tar reader sees it,
// so that a stream which is not a tarball can be read again as one image.
const maxGzipSize = 16 * maxROMSize

// extractFromTarGz reads every ROM image from a gzipped tarball, or the
// single image of a plain .gz file.
func extractFromTarGz(path string) (map[string][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(io.LimitReader(gz, maxGzipSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read gzip: %w", err)
	}
	if len(data) > maxGzipSize {
		return nil, ErrFileTooLarge
	}

	files := make(map[string][]byte)
	tr := tar.NewReader(bytes.NewReader(data))
	for first := true; ; first = false {
		header, err := tr.Next()
		if err != nil && first {
			return singleGzip(path, gz.Name, data)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !emu.IsROMFile(header.Name) {
			continue
		}
		data, err := limitedRead(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		files[header.Name] = data
	}
	return files, nil
}

// singleGzip names a plain gzipped image after the name stored in the gzip
// header, falling back to the archive name without its .gz extension.
func singleGzip(path, stored string, data []byte) (map[string][]byte, error) {
	files := make(map[string][]byte)
	name := stored
	if !emu.IsROMFile(name) {
		name = filepath.Base(path)
		if strings.HasSuffix(strings.ToLower(name), ".gz") {
			name = name[:len(name)-len(".gz")]
		}
	}
	if !emu.IsROMFile(name) {
		return files, nil
	}
	if len(data) > maxROMSize {
		return nil, fmt.Errorf("%s: %w", name, ErrFileTooLarge)
	}
	files[name] = data
	return files, nil
}
