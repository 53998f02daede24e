package ncp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/log"
)

// Framing constants.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4

	// DefaultMaxMessageSize bounds one message. A MAC frame is at most 127
	// bytes; the rest is CBOR envelope.
	DefaultMaxMessageSize = 2048
)

// Framing errors.
var (
	ErrMessageTooLarge = errors.New("message too large")
	ErrMessageEmpty    = errors.New("message is empty")
	ErrFrameTruncated  = errors.New("frame truncated")
)

// FrameWriter writes length-prefixed frames.
type FrameWriter struct {
	w              io.Writer
	maxMessageSize uint32
	mu             sync.Mutex

	logger  log.Logger
	ifaceID string
}

// NewFrameWriter creates a frame writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w, maxMessageSize: DefaultMaxMessageSize}
}

// SetLogger configures protocol capture. Pass nil to disable.
func (fw *FrameWriter) SetLogger(logger log.Logger, ifaceID string) {
	fw.logger = logger
	fw.ifaceID = ifaceID
}

// WriteFrame writes one frame. Safe for concurrent use.
func (fw *FrameWriter) WriteFrame(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if uint32(len(data)) > fw.maxMessageSize {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), fw.maxMessageSize)
	}

	// Prefix and payload in a single write.
	buf := make([]byte, LengthPrefixSize+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[LengthPrefixSize:], data)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if _, err := fw.w.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	if fw.logger != nil {
		fw.logger.Log(frameEvent(fw.ifaceID, data, log.DirectionOut))
	}
	return nil
}

// FrameReader reads length-prefixed frames.
type FrameReader struct {
	r              io.Reader
	maxMessageSize uint32
	lengthBuf      [LengthPrefixSize]byte

	logger  log.Logger
	ifaceID string
}

// NewFrameReader creates a frame reader.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r, maxMessageSize: DefaultMaxMessageSize}
}

// SetLogger configures protocol capture. Pass nil to disable.
func (fr *FrameReader) SetLogger(logger log.Logger, ifaceID string) {
	fr.logger = logger
	fr.ifaceID = ifaceID
}

// ReadFrame reads one frame and returns its payload. A clean end of stream
// before a prefix returns io.EOF.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read length prefix: %w", err)
	}

	length := binary.BigEndian.Uint32(fr.lengthBuf[:])
	if length == 0 {
		return nil, ErrMessageEmpty
	}
	if length > fr.maxMessageSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, length, fr.maxMessageSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	if fr.logger != nil {
		fr.logger.Log(frameEvent(fr.ifaceID, payload, log.DirectionIn))
	}
	return payload, nil
}

// Framer combines frame reading and writing.
type Framer struct {
	*FrameReader
	*FrameWriter
}

// NewFramer creates a framer over rw.
func NewFramer(rw io.ReadWriter) *Framer {
	return &Framer{
		FrameReader: NewFrameReader(rw),
		FrameWriter: NewFrameWriter(rw),
	}
}

// SetLogger configures protocol capture for both directions.
func (f *Framer) SetLogger(logger log.Logger, ifaceID string) {
	f.FrameReader.SetLogger(logger, ifaceID)
	f.FrameWriter.SetLogger(logger, ifaceID)
}

func frameEvent(ifaceID string, data []byte, dir log.Direction) log.Event {
	return log.Event{
		Timestamp:   time.Now(),
		InterfaceID: ifaceID,
		Direction:   dir,
		Layer:       log.LayerTransport,
		Category:    log.CategoryFrame,
		Frame: &log.FrameEvent{
			Size: LengthPrefixSize + len(data),
			Data: data,
		},
	}
}
