// Package archive periodically exports market price history to blob storage.
// Each run serializes every market's identifier, prices, volume, and history
// as JSONL and uploads one object per run, partitioned by day. The export is
// an offline record for analysis; the engine never reads it back.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/suilfg/marketsim/internal/domain"
)

// SnapshotSource provides the consistent view the archiver exports. The
// engine satisfies it.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

// row is one JSONL line: a market's pricing state at export time.
type row struct {
	MarketID     string              `json:"marketId"`
	Status       domain.MarketStatus `json:"status"`
	YesPrice     float64             `json:"yesPrice"`
	NoPrice      float64             `json:"noPrice"`
	TotalVolume  float64             `json:"totalVolume"`
	PriceHistory []domain.PricePoint `json:"priceHistory"`
	TakenAt      int64               `json:"takenAt"`
}

// Archiver runs the periodic export loop.
type Archiver struct {
	source   SnapshotSource
	writer   domain.BlobWriter
	interval time.Duration
	logger   *slog.Logger
}

// New creates an Archiver. interval must be positive.
func New(source SnapshotSource, writer domain.BlobWriter, interval time.Duration, logger *slog.Logger) *Archiver {
	return &Archiver{
		source:   source,
		writer:   writer,
		interval: interval,
		logger:   logger.With(slog.String("component", "archiver")),
	}
}

// Run exports on every tick until ctx is cancelled. Failed exports are
// logged and retried on the next tick.
func (a *Archiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.InfoContext(ctx, "archiver started",
		slog.Duration("interval", a.interval),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.ExportOnce(ctx); err != nil {
				a.logger.Warn("price history export failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// ExportOnce serializes the current snapshot and uploads it.
func (a *Archiver) ExportOnce(ctx context.Context) error {
	snap := a.source.Snapshot()
	if len(snap.Markets) == 0 {
		return nil
	}

	buf, err := marshalJSONL(snap)
	if err != nil {
		return fmt.Errorf("archive: marshal snapshot: %w", err)
	}

	path := exportPath(time.UnixMilli(snap.TakenAt).UTC())
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return fmt.Errorf("archive: upload %s: %w", path, err)
	}

	a.logger.Debug("price history exported",
		slog.String("path", path),
		slog.Int("markets", len(snap.Markets)),
	)
	return nil
}

// exportPath partitions objects by day, with the full timestamp in the name:
//
//	archive/prices/2025-01-31/153000.jsonl
func exportPath(at time.Time) string {
	return fmt.Sprintf("archive/prices/%s/%s.jsonl",
		at.Format("2006-01-02"), at.Format("150405"))
}

func marshalJSONL(snap domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, m := range snap.Markets {
		r := row{
			MarketID:     m.ID,
			Status:       m.Status,
			YesPrice:     m.YesPrice,
			NoPrice:      m.NoPrice,
			TotalVolume:  m.TotalVolume,
			PriceHistory: m.PriceHistory,
			TakenAt:      snap.TakenAt,
		}
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
