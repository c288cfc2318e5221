// Package recorder writes frame reports to an append-only CBOR log and reads them back.
//
// File layout: the 8-byte magic "SCWREC01", then records of
// [unix nanos uint64 LE][payload length uint32 LE][CBOR payload].
package recorder

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/smazurov/scalerwatch/internal/events"
	"github.com/smazurov/scalerwatch/internal/report"
)

// Magic opens every recording.
const Magic = "SCWREC01"

const (
	recordHeaderSize = 12
	maxPayload       = 16 << 20
)

// ErrBadMagic is returned when a file is not a recording.
var ErrBadMagic = errors.New("not a scalerwatch recording")

// ErrClosed is returned when recording after Close.
var ErrClosed = errors.New("recorder is closed")

// Writer appends records to a file.
type Writer struct {
	mu          sync.Mutex
	f           *os.File
	w           *bufio.Writer
	changesOnly bool
	count       uint64
}

// Create opens path for appending, writing the magic when the file is new.
func Create(path string, changesOnly bool) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat recording: %w", err)
	}

	if st.Size() > 0 {
		magic := make([]byte, len(Magic))
		if _, err := f.ReadAt(magic, 0); err != nil || string(magic) != Magic {
			_ = f.Close()
			return nil, fmt.Errorf("%s: %w", path, ErrBadMagic)
		}
	}

	w := bufio.NewWriterSize(f, 64*1024)
	if st.Size() == 0 {
		if _, err := w.WriteString(Magic); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := w.Flush(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return &Writer{f: f, w: w, changesOnly: changesOnly}, nil
}

// Record appends v stamped with at.
func (r *Writer) Record(at time.Time, v any) error {
	payload, err := cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return ErrClosed
	}
	var header [recordHeaderSize]byte
	binary.LittleEndian.PutUint64(header[:8], uint64(at.UnixNano()))
	binary.LittleEndian.PutUint32(header[8:], uint32(len(payload)))
	if _, err := r.w.Write(header[:]); err != nil {
		return err
	}
	if _, err := r.w.Write(payload); err != nil {
		return err
	}
	r.count++
	return r.w.Flush()
}

// RecordReport appends a report unless the writer only keeps changes and r is unchanged.
func (r *Writer) RecordReport(rep report.Report) error {
	if r.changesOnly && !rep.Changed {
		return nil
	}
	return r.Record(rep.Timestamp, rep)
}

// Count returns the number of records written by this writer.
func (r *Writer) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Attach records every frame report published on bus.
func (r *Writer) Attach(bus *events.Bus, logger *slog.Logger) func() {
	return bus.Subscribe(func(e events.FrameReportEvent) {
		if err := r.RecordReport(e.Report); err != nil && !errors.Is(err, ErrClosed) {
			logger.Warn("Failed to record report", "error", err)
		}
	})
}

// Close flushes and closes the file.
func (r *Writer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return nil
	}
	err := r.w.Flush()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	r.w = nil
	return err
}

// Record is one decoded log entry.
type Record struct {
	Time    time.Time
	Payload []byte
}

// Decode unmarshals the payload into v.
func (rec Record) Decode(v any) error {
	return cbor.Unmarshal(rec.Payload, v)
}

// Reader iterates over a recording.
type Reader struct {
	r *bufio.Reader
}

// NewReader checks the magic and returns a reader positioned at the first record.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("magic %q: %w", magic, ErrBadMagic)
	}
	return &Reader{r: br}, nil
}

// Next returns the next record, or io.EOF at the end. A truncated final
// record also ends the stream with io.EOF.
func (r *Reader) Next() (Record, error) {
	var header [recordHeaderSize]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, io.EOF
		}
		return Record{}, err
	}
	ts := int64(binary.LittleEndian.Uint64(header[:8]))
	size := binary.LittleEndian.Uint32(header[8:])
	if size > maxPayload {
		return Record{}, fmt.Errorf("record of %d bytes exceeds limit", size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, err
	}
	return Record{Time: time.Unix(0, ts), Payload: payload}, nil
}
