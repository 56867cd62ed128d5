package vectorlog

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrBadHeader is returned when a binary log does not start with VEC1.
var ErrBadHeader = errors.New("not a binary vector log")

// EventKind tells a recorded point from a beam event.
type EventKind uint8

const (
	EventPoint EventKind = iota
	EventBlank
	EventUnblank
)

// Event is one record of a binary log.
type Event struct {
	Kind    EventKind
	X, Y, Z uint16
}

// ReadBinary decodes a binary log. A trailing partial record is ignored.
func ReadBinary(r io.Reader) ([]Event, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if !bytes.Equal(hdr[:4], binaryMagic) {
		return nil, fmt.Errorf("%w: magic %q", ErrBadHeader, hdr[:4])
	}

	var events []Event
	var rec [6]byte
	for {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return events, nil
			}
			return events, err
		}
		e := Event{
			X: binary.LittleEndian.Uint16(rec[0:]),
			Y: binary.LittleEndian.Uint16(rec[2:]),
			Z: binary.LittleEndian.Uint16(rec[4:]),
		}
		if e.X == markerXY && e.Y == markerXY {
			switch e.Z {
			case markerBlank:
				e = Event{Kind: EventBlank}
			case markerUnblank:
				e = Event{Kind: EventUnblank}
			}
		}
		events = append(events, e)
	}
}
