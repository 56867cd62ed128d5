// Package vectorlog records the samples sent to a display driver so that a
// run can be inspected or replayed offline.
package vectorlog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Andretti1967/asteroidino/emu"
)

// Mode selects the output format.
type Mode uint8

const (
	ModeCSV Mode = iota + 1
	ModeBinary
	ModeText
)

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown vector log mode")

var modeNames = map[string]Mode{
	"csv":    ModeCSV,
	"binary": ModeBinary,
	"bin":    ModeBinary,
	"text":   ModeText,
	"txt":    ModeText,
}

// ParseMode maps a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	if m, ok := modeNames[strings.ToLower(s)]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) String() string {
	switch m {
	case ModeCSV:
		return "csv"
	case ModeBinary:
		return "binary"
	case ModeText:
		return "text"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Binary stream layout.
var binaryMagic = []byte("VEC1")

const (
	markerXY      = 0xFFFF
	markerBlank   = 0x0000
	markerUnblank = 0xFFFF
)

// Stats summarises everything logged since New.
type Stats struct {
	Points   int
	Frames   int
	Blanks   int
	Unblanks int
	Bytes    int64

	MinX, MaxX uint16
	MinY, MaxY uint16
	MinZ, MaxZ uint16
}

// Logger is an emu.FrameDriver that writes every sample to w and then
// forwards it to the next driver, if any.
type Logger struct {
	w    *bufio.Writer
	mode Mode
	next emu.DisplayDriver
	now  func() time.Time

	x, y  uint16
	lit   bool
	frame uint64
	stats Stats
	err   error
}

// New creates a logger and writes the header for mode. next may be nil.
func New(w io.Writer, mode Mode, next emu.DisplayDriver) *Logger {
	l := &Logger{
		w:    bufio.NewWriter(w),
		mode: mode,
		next: next,
		now:  time.Now,
	}
	l.stats.MinX, l.stats.MinY, l.stats.MinZ = 4095, 4095, 4095
	l.header()
	return l
}

func (l *Logger) header() {
	switch l.mode {
	case ModeCSV:
		l.printf("frame,x,y,z,comment\n")
	case ModeText:
		l.printf("=== Vector Logger Start ===\n")
		l.printf("Timestamp: %s\n", l.now().Format(time.RFC3339))
		l.printf("===========================\n")
	case ModeBinary:
		l.write(binaryMagic)
		l.write([]byte{byte(l.mode)})
	}
}

// SetPosition moves the beam.
func (l *Logger) SetPosition(x, y uint16) {
	l.x, l.y = x&0x0FFF, y&0x0FFF
	if l.next != nil {
		l.next.SetPosition(x, y)
	}
}

// SetIntensity completes a sample. Transitions between a dark and a lit
// beam are logged as blank and unblank events before the point itself.
func (l *Logger) SetIntensity(z uint8) {
	switch {
	case z == 0 && l.lit:
		l.blank()
	case z > 0 && !l.lit:
		l.unblank()
	}
	l.lit = z > 0
	l.point(l.x, l.y, expand(z))
	if l.next != nil {
		l.next.SetIntensity(z)
	}
}

// BeginFrame tags the following samples with the next frame number.
func (l *Logger) BeginFrame() {
	l.frame = uint64(l.stats.Frames)
	if fd, ok := l.next.(emu.FrameDriver); ok {
		fd.BeginFrame()
	}
}

// EndFrame closes the frame and flushes every ten frames.
func (l *Logger) EndFrame() {
	l.stats.Frames++
	if l.stats.Frames%10 == 0 {
		l.flush()
	}
	if fd, ok := l.next.(emu.FrameDriver); ok {
		fd.EndFrame()
	}
}

// Comment adds a free text line. Binary logs have no room for it.
func (l *Logger) Comment(s string) {
	s = strings.ReplaceAll(s, "\n", " ")
	switch l.mode {
	case ModeCSV:
		l.printf("%d,,,%s\n", l.frame, s)
	case ModeText:
		l.printf("F%d: # %s\n", l.frame, s)
	}
}

// Stats returns the counters so far.
func (l *Logger) Stats() Stats {
	return l.stats
}

// Err returns the first write error.
func (l *Logger) Err() error {
	return l.err
}

// Close writes the footer and flushes. It does not close the underlying
// writer.
func (l *Logger) Close() error {
	switch l.mode {
	case ModeText:
		l.printf("=== Vector Logger End ===\n")
		l.printf("Total Points: %d\n", l.stats.Points)
		l.printf("Total Frames: %d\n", l.stats.Frames)
	case ModeCSV:
		l.printf("# Total Points: %d\n", l.stats.Points)
		l.printf("# Total Frames: %d\n", l.stats.Frames)
	}
	l.flush()
	return l.err
}

// WriteStats writes a readable summary of s to w.
func WriteStats(w io.Writer, s Stats) {
	fmt.Fprintf(w, "Points logged: %d\n", s.Points)
	fmt.Fprintf(w, "Frames logged: %d\n", s.Frames)
	if s.Frames > 0 {
		fmt.Fprintf(w, "Avg points/frame: %.1f\n", float64(s.Points)/float64(s.Frames))
	}
	if s.Points > 0 {
		fmt.Fprintf(w, "X range: %d - %d\n", s.MinX, s.MaxX)
		fmt.Fprintf(w, "Y range: %d - %d\n", s.MinY, s.MaxY)
		fmt.Fprintf(w, "Z range: %d - %d\n", s.MinZ, s.MaxZ)
	}
	fmt.Fprintf(w, "Blank events: %d\n", s.Blanks)
	fmt.Fprintf(w, "Unblank events: %d\n", s.Unblanks)
	fmt.Fprintf(w, "Bytes written: %d\n", s.Bytes)
}

// expand widens an 8-bit intensity to the 12-bit range of the coordinates.
func expand(z uint8) uint16 {
	if z == 0 {
		return 0
	}
	return uint16(z)<<4 | uint16(z>>4)
}

func (l *Logger) point(x, y, z uint16) {
	l.stats.Points++
	l.stats.MinX, l.stats.MaxX = min(l.stats.MinX, x), max(l.stats.MaxX, x)
	l.stats.MinY, l.stats.MaxY = min(l.stats.MinY, y), max(l.stats.MaxY, y)
	l.stats.MinZ, l.stats.MaxZ = min(l.stats.MinZ, z), max(l.stats.MaxZ, z)

	switch l.mode {
	case ModeCSV:
		l.printf("%d,%d,%d,%d,\n", l.frame, x, y, z)
	case ModeText:
		l.printf("F%d: (%4d, %4d, %4d)\n", l.frame, x, y, z)
	case ModeBinary:
		l.triple(x, y, z)
	}
}

func (l *Logger) blank() {
	l.stats.Blanks++
	switch l.mode {
	case ModeCSV:
		l.printf("%d,,,0,BLANK\n", l.frame)
	case ModeText:
		l.printf("F%d: BLANK\n", l.frame)
	case ModeBinary:
		l.triple(markerXY, markerXY, markerBlank)
	}
}

func (l *Logger) unblank() {
	l.stats.Unblanks++
	switch l.mode {
	case ModeCSV:
		l.printf("%d,,,4095,UNBLANK\n", l.frame)
	case ModeText:
		l.printf("F%d: UNBLANK\n", l.frame)
	case ModeBinary:
		l.triple(markerXY, markerXY, markerUnblank)
	}
}

func (l *Logger) triple(x, y, z uint16) {
	var b [6]byte
	binary.LittleEndian.PutUint16(b[0:], x)
	binary.LittleEndian.PutUint16(b[2:], y)
	binary.LittleEndian.PutUint16(b[4:], z)
	l.write(b[:])
}

func (l *Logger) printf(format string, args ...interface{}) {
	if l.err != nil {
		return
	}
	n, err := fmt.Fprintf(l.w, format, args...)
	l.stats.Bytes += int64(n)
	l.err = err
}

func (l *Logger) write(b []byte) {
	if l.err != nil {
		return
	}
	n, err := l.w.Write(b)
	l.stats.Bytes += int64(n)
	l.err = err
}

func (l *Logger) flush() {
	if l.err == nil {
		l.err = l.w.Flush()
	}
}
