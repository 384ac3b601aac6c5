package dump978

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxLineLength bounds a single dump978 line
const MaxLineLength = 1024 * 1024

var (
	ErrEmptyLine      = errors.New("empty line")
	ErrUnknownChannel = errors.New("unknown channel prefix")
	ErrMalformedHex   = errors.New("malformed hex payload")
)

// ParseLine parses a dump978 raw line of the form
//
//	-<hex>;rs=<n>;ss=<n>;t=<unix seconds>;
//
// Uplink payloads are hex decoded too but never interpreted. For an unknown
// channel the returned frame still carries the raw text.
func ParseLine(line string) (*Frame, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, ErrEmptyLine
	}

	frame := &Frame{}
	switch line[0] {
	case UplinkPrefix:
		frame.Channel = ChannelUplink
	case DownlinkPrefix:
		frame.Channel = ChannelDownlink
	default:
		frame.Raw = line
		return frame, fmt.Errorf("%w: %q", ErrUnknownChannel, line[0])
	}
	frame.Raw = line[1:]

	parts := strings.Split(frame.Raw, ";")
	hexData := parts[0]
	if len(hexData)%2 != 0 {
		return frame, fmt.Errorf("%w: odd length %d", ErrMalformedHex, len(hexData))
	}
	data, err := hex.DecodeString(hexData)
	if err != nil {
		return frame, fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}
	frame.Payload = data

	for _, part := range parts[1:] {
		parseMetadata(frame, part)
	}

	return frame, nil
}

// parseMetadata applies one key=value pair. Values that fail to parse are ignored.
func parseMetadata(frame *Frame, part string) {
	if part == "" {
		return
	}
	key, value, found := strings.Cut(part, "=")
	if !found {
		return
	}

	switch key {
	case "rs":
		if n, err := strconv.Atoi(value); err == nil {
			frame.ErrorsCorrected = n
			frame.HasErrors = true
		}
	case "ss":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			frame.SignalStrength = v
			frame.HasSignal = true
		}
	case "t":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			sec, frac := math.Modf(v)
			frame.Timestamp = time.Unix(int64(sec), int64(frac*1e9)).UTC()
		}
	default:
		if frame.Extra == nil {
			frame.Extra = make(map[string]string)
		}
		frame.Extra[key] = value
	}
}

// Reader reads dump978 lines from a stream. Lines longer than
// MaxLineLength are dropped and reading continues with the next one.
type Reader struct {
	reader  *bufio.Reader
	logger  *logrus.Logger
	lines   atomic.Int64
	skipped atomic.Int64
}

// NewReader creates a new line reader
func NewReader(r io.Reader, logger *logrus.Logger) *Reader {
	return &Reader{
		reader: bufio.NewReaderSize(r, MaxLineLength),
		logger: logger,
	}
}

// Next returns the next non-empty line. It returns io.EOF at the end of
// the stream.
func (r *Reader) Next() (string, error) {
	for {
		line, err := r.readLine()
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if n := r.lines.Load(); n%1000 == 0 {
			r.logger.WithField("lines", n).Debug("dump978 reader progress")
		}
		return line, nil
	}
}

// readLine returns one raw line. An overlong line comes back empty after
// the rest of it has been discarded.
func (r *Reader) readLine() (string, error) {
	data, err := r.reader.ReadSlice('\n')
	switch {
	case err == nil:
		r.lines.Add(1)
		return string(data), nil
	case errors.Is(err, bufio.ErrBufferFull):
		discarded := len(data)
		for errors.Is(err, bufio.ErrBufferFull) {
			data, err = r.reader.ReadSlice('\n')
			discarded += len(data)
		}
		line := r.lines.Add(1)
		r.skipped.Add(1)
		r.logger.WithFields(logrus.Fields{
			"line":  line,
			"bytes": discarded,
			"limit": MaxLineLength,
		}).Warn("Skipping overlong dump978 line")
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read dump978 input: %w", err)
		}
		return "", nil
	case errors.Is(err, io.EOF):
		if len(data) == 0 {
			return "", io.EOF
		}
		r.lines.Add(1)
		return string(data), nil
	default:
		return "", fmt.Errorf("failed to read dump978 input: %w", err)
	}
}

// Lines returns the number of lines read so far, blank and skipped ones included
func (r *Reader) Lines() int {
	return int(r.lines.Load())
}

// Skipped returns the number of lines dropped for exceeding MaxLineLength
func (r *Reader) Skipped() int {
	return int(r.skipped.Load())
}
