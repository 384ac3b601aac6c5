package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"go978/internal/basestation"
	"go978/internal/dump978"
	"go978/internal/storage"
	"go978/internal/uat"
)

// Pipeline turns dump978 lines into rendered output and sink records.
// Each line is handled to completion before the next one.
type Pipeline struct {
	format      OutputFormat
	out         io.Writer
	baseStation *basestation.Writer
	json        *json.Encoder
	sinks       []Sink
	stats       *Stats
	logger      *logrus.Logger
	now         func() time.Time
}

// NewPipeline creates a pipeline writing rendered records to out. out may be
// nil when only sinks are wanted; stats may be nil for private counters.
func NewPipeline(format OutputFormat, out io.Writer, sinks []Sink, stats *Stats, logger *logrus.Logger) *Pipeline {
	if out == nil {
		out = io.Discard
	}
	if stats == nil {
		stats = &Stats{}
	}
	return &Pipeline{
		format:      format,
		out:         out,
		baseStation: basestation.NewWriter(out, logger),
		json:        json.NewEncoder(out),
		sinks:       sinks,
		stats:       stats,
		logger:      logger,
		now:         time.Now,
	}
}

// Stats returns the pipeline counters
func (p *Pipeline) Stats() *Stats {
	return p.stats
}

// HandleLine processes one input line. Malformed lines are logged and
// counted; only output write failures are returned.
func (p *Pipeline) HandleLine(ctx context.Context, line string) error {
	p.stats.lines.Add(1)

	frame, err := dump978.ParseLine(line)
	switch {
	case errors.Is(err, dump978.ErrEmptyLine):
		return nil
	case errors.Is(err, dump978.ErrUnknownChannel):
		p.stats.unknown.Add(1)
		p.logger.WithField("line", line).Debug("Unknown message")
		return p.writeText("UNKNOWN MESSAGE\n\n")
	}

	if !frame.IsDownlink() {
		p.stats.uplinks.Add(1)
		if err != nil {
			p.logger.WithError(err).Debug("Uplink payload is not valid hex")
		}
		return p.writeText(fmt.Sprintf("UPLINK\n%s\n\n", frame.Raw))
	}

	p.stats.downlinks.Add(1)
	if err != nil {
		p.stats.failed.Add(1)
		p.logger.WithError(err).WithField("line", line).Warn("Skipping malformed downlink")
		return nil
	}

	decoded, err := uat.Decode(frame.Payload)
	if err != nil {
		p.stats.failed.Add(1)
		p.logger.WithError(err).WithFields(logrus.Fields{
			"line":  line,
			"bytes": len(frame.Payload),
		}).Warn("Failed to decode downlink")
		return nil
	}
	p.stats.decoded.Add(1)

	rec := storage.NewRecord(decoded, frame.ReceivedAt(p.now().UTC()), frame.HexPayload())
	if frame.HasSignal {
		rec.SignalStrength = &frame.SignalStrength
	}
	if frame.HasErrors {
		rec.ErrorsFixed = &frame.ErrorsCorrected
	}

	if p.logger.IsLevelEnabled(logrus.DebugLevel) {
		p.logger.WithFields(logrus.Fields{
			"type_code": rec.TypeCode,
			"address":   rec.Address,
			"qualifier": rec.Qualifier,
		}).Debug("Decoded downlink")
	}

	p.writeSinks(ctx, rec)

	switch p.format {
	case FormatSBS:
		return p.baseStation.WriteRecord(rec)
	case FormatJSON:
		if err := p.json.Encode(rec); err != nil {
			return fmt.Errorf("failed to write JSON record: %w", err)
		}
		return nil
	default:
		return p.writeText(fmt.Sprintf("DOWNLINK\n%s\n%s\n", frame.Raw, decoded.Report()))
	}
}

// writeText writes only in text format; sbs and json carry decoded downlinks only
func (p *Pipeline) writeText(s string) error {
	if p.format != FormatText {
		return nil
	}
	if _, err := io.WriteString(p.out, s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (p *Pipeline) writeSinks(ctx context.Context, rec *storage.Record) {
	for _, sink := range p.sinks {
		if err := sink.Write(ctx, rec); err != nil {
			p.stats.sinkErrors.Add(1)
			p.logger.WithError(err).WithFields(logrus.Fields{
				"sink":    sink.Name(),
				"address": rec.Address,
			}).Warn("Sink write failed")
		}
	}
}
