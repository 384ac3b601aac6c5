package basestation

import (
	"bytes"
	"encoding/hex"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go978/internal/storage"
	"go978/internal/uat"
)

func newTestWriter(out io.Writer) *Writer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	w := NewWriter(out, logger)
	w.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 10, 0, time.UTC) }
	return w
}

func captureRecord(t *testing.T) *storage.Record {
	t.Helper()
	data, err := hex.DecodeString("0b2b48fe3aef1f88621a0856110a31c01105c4e6c4e6c40a9a820300000000000000")
	require.NoError(t, err)
	d, err := uat.Decode(data)
	require.NoError(t, err)
	return storage.NewRecord(d, time.Date(2024, 5, 6, 7, 8, 9, 500000000, time.UTC), "")
}

func TestWriter_Convert(t *testing.T) {
	w := newTestWriter(io.Discard)
	rec := captureRecord(t)
	rec.CallSign = "N12345"

	msgs := w.Convert(rec)
	require.Len(t, msgs, 3)

	pos := msgs[0]
	assert.Equal(t, TransmissionAirborne, pos.TransmissionType)
	assert.Equal(t, "2B48FE", pos.HexIdent)
	assert.Equal(t, 0x2B48FE, pos.AircraftID)
	assert.Equal(t, "2300", pos.Altitude)
	assert.Equal(t, "41.43800", pos.Latitude)
	assert.Equal(t, "-84.10556", pos.Longitude)
	assert.Equal(t, "0", pos.IsOnGround)
	assert.Equal(t, "0", pos.Emergency)

	vel := msgs[1]
	assert.Equal(t, TransmissionVelocity, vel.TransmissionType)
	assert.Equal(t, "118", vel.GroundSpeed)
	assert.Equal(t, "236.4", vel.Track)

	ident := msgs[2]
	assert.Equal(t, TransmissionIDCategory, ident.TransmissionType)
	assert.Equal(t, "N12345", ident.Callsign)
}

func TestWriter_ConvertSurface(t *testing.T) {
	w := newTestWriter(io.Discard)
	lat, lng, alt := 40.5, -105.25, 5000
	rec := &storage.Record{
		Address:   "A1B2C3",
		Latitude:  &lat,
		Longitude: &lng,
		Altitude:  &alt,
		AirGround: uat.AirGroundSurface.String(),
		Emergency: "General emergency",
	}

	msgs := w.Convert(rec)
	require.Len(t, msgs, 1)
	assert.Equal(t, TransmissionSurface, msgs[0].TransmissionType)
	assert.Equal(t, "-1", msgs[0].IsOnGround)
	assert.Equal(t, "-1", msgs[0].Emergency)
	assert.Equal(t, "40.50000", msgs[0].Latitude)
	assert.Equal(t, "-105.25000", msgs[0].Longitude)
}

func TestWriter_ConvertNoFix(t *testing.T) {
	w := newTestWriter(io.Discard)
	zero := 0.0
	rec := &storage.Record{Address: "000001", Latitude: &zero, Longitude: &zero}

	msgs := w.Convert(rec)
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].Latitude)
	assert.Empty(t, msgs[0].Longitude)
}

func TestWriter_WriteRecord(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWriter(&buf)

	require.NoError(t, w.WriteRecord(captureRecord(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	fields := strings.Split(lines[0], ",")
	require.Len(t, fields, 22)
	assert.Equal(t, "MSG", fields[0])
	assert.Equal(t, "3", fields[1])
	assert.Equal(t, "2B48FE", fields[4])
	assert.Equal(t, "2024/05/06", fields[6])
	assert.Equal(t, "07:08:09.500", fields[7])
	assert.Equal(t, "07:08:10.000", fields[9])
	assert.Equal(t, "2300", fields[11])
	assert.True(t, strings.HasPrefix(lines[1], "MSG,4,"))
}

func TestWriter_WriteRecordNothingToWrite(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWriter(&buf)

	require.NoError(t, w.WriteRecord(&storage.Record{Address: "ABCDEF"}))
	assert.Zero(t, buf.Len())

	assert.Error(t, w.WriteRecord(nil))
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestWriter_ConcurrentWrite(t *testing.T) {
	out := &lockedBuffer{}
	w := newTestWriter(out)
	rec := captureRecord(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				assert.NoError(t, w.WriteRecord(rec))
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(out.buf.String()), "\n")
	assert.Len(t, lines, 400)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "MSG,"), line)
	}
}

func TestFormatCSV(t *testing.T) {
	ts := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &Message{
		MessageType:      MessageMSG,
		TransmissionType: TransmissionIDCategory,
		SessionID:        1,
		AircraftID:       1,
		HexIdent:         "ABCDEF",
		FlightID:         1,
		DateGenerated:    ts,
		TimeGenerated:    ts,
		DateLogged:       ts,
		TimeLogged:       ts,
		Callsign:         "UAL123",
	}

	assert.Equal(t,
		"MSG,1,1,1,ABCDEF,1,2023/01/01,12:00:00.000,2023/01/01,12:00:00.000,UAL123,,,,,,,,,,,",
		FormatCSV(msg))
}
