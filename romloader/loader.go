// Package romloader collects the Asteroids ROM images from a directory or
// from an archive (ZIP, 7z, tar.gz or a single .gz image, RAR) and assembles them into a ROM set.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Andretti1967/asteroidino/emu"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// Maximum size of a single image. The largest real one is 2KB.
const maxROMSize = 64 * 1024

// ErrNoROMFiles is returned when a source holds none of the set's files
var ErrNoROMFiles = errors.New("no Asteroids ROM files found")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// formatType represents the detected file format
type formatType int

const (
	formatUnknown formatType = iota
	formatZIP
	format7z
	formatTarGz
	formatRAR
)

// LoadROMSet loads the ROM set from path, which may be a directory or an
// archive. Only files named like the set's images are read.
func LoadROMSet(path string) (emu.ROMSet, error) {
	files, err := LoadFiles(path)
	if err != nil {
		return emu.ROMSet{}, err
	}
	return emu.NewROMSet(files)
}

// LoadFiles returns the contents of every ROM image found at path, keyed
// by the name it was found under.
func LoadFiles(path string) (map[string][]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if info.IsDir() {
		return readDir(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	header := make([]byte, 16)
	n, err := f.Read(header)
	f.Close()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}

	var files map[string][]byte
	switch detectFormat(header[:n], path) {
	case formatZIP:
		files, err = extractFromZIP(path)
	case format7z:
		files, err = extractFrom7z(path)
	case formatTarGz:
		files, err = extractFromTarGz(path)
	case formatRAR:
		files, err = extractFromRAR(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoROMFiles, path)
	}
	return files, nil
}

// readDir reads the set's images from a directory, ignoring other files.
func readDir(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	files := make(map[string][]byte)
	for _, e := range entries {
		if e.IsDir() || !emu.IsROMFile(e.Name()) {
			continue
		}
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", e.Name(), err)
		}
		data, err := limitedRead(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		files[e.Name()] = data
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoROMFiles, dir)
	}
	return files, nil
}

// detectFormat determines the file format based on magic bytes and extension
func detectFormat(header []byte, path string) formatType {
	// Check magic bytes first (more reliable)
	if len(header) >= 4 {
		if bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd) {
			return formatZIP
		}
		if bytes.HasPrefix(header, magicRAR) {
			return formatRAR
		}
	}
	if len(header) >= 6 && bytes.HasPrefix(header, magic7z) {
		return format7z
	}
	if len(header) >= 2 && bytes.HasPrefix(header, magicGzip) {
		return formatTarGz
	}

	// Fall back to extension
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return formatZIP
	case strings.HasSuffix(lower, ".7z"):
		return format7z
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"), strings.HasSuffix(lower, ".gz"):
		return formatTarGz
	case strings.HasSuffix(lower, ".rar"):
		return formatRAR
	}
	return formatUnknown
}

// limitedRead reads from r up to maxROMSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxROMSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxROMSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
