package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suilfg/marketsim/internal/domain"
)

type fakeSource struct {
	snap domain.Snapshot
}

func (f *fakeSource) Snapshot() domain.Snapshot { return f.snap }

type fakeWriter struct {
	paths []string
	data  [][]byte
}

func (f *fakeWriter) Put(_ context.Context, path string, data io.Reader, _ string) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.paths = append(f.paths, path)
	f.data = append(f.data, raw)
	return nil
}

func (f *fakeWriter) PutMultipart(ctx context.Context, path string, data io.Reader, _ int64) error {
	return f.Put(ctx, path, data, "")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExportOnceWritesOneLinePerMarket(t *testing.T) {
	takenAt := time.Date(2025, 1, 31, 15, 30, 0, 0, time.UTC)
	src := &fakeSource{snap: domain.Snapshot{
		Markets: []domain.Market{
			{
				ID: "bitcoin-200k", Status: domain.MarketStatusOpen,
				YesPrice: 0.65, NoPrice: 0.35, TotalVolume: 125000,
				PriceHistory: []domain.PricePoint{{Time: takenAt.UnixMilli(), Value: 0.65}},
			},
			{ID: "sui-price-10", Status: domain.MarketStatusOpen, YesPrice: 0.42, NoPrice: 0.58},
		},
		TakenAt: takenAt.UnixMilli(),
	}}
	w := &fakeWriter{}

	a := New(src, w, time.Hour, testLogger())
	require.NoError(t, a.ExportOnce(context.Background()))

	require.Len(t, w.paths, 1)
	assert.Equal(t, "archive/prices/2025-01-31/153000.jsonl", w.paths[0])

	lines := bytes.Split(bytes.TrimSpace(w.data[0]), []byte("\n"))
	require.Len(t, lines, 2)

	var first row
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, "bitcoin-200k", first.MarketID)
	assert.Equal(t, 0.65, first.YesPrice)
	assert.Equal(t, takenAt.UnixMilli(), first.TakenAt)
}

func TestExportOnceSkipsEmptySnapshot(t *testing.T) {
	w := &fakeWriter{}
	a := New(&fakeSource{}, w, time.Hour, testLogger())

	require.NoError(t, a.ExportOnce(context.Background()))
	assert.Empty(t, w.paths)
}

func TestRunExportsOnTicksUntilCancelled(t *testing.T) {
	src := &fakeSource{snap: domain.Snapshot{
		Markets: []domain.Market{{ID: "m", Status: domain.MarketStatusOpen}},
		TakenAt: time.Now().UnixMilli(),
	}}
	w := &fakeWriter{}
	a := New(src, w, 5*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := a.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotEmpty(t, w.paths)
	for _, p := range w.paths {
		assert.True(t, strings.HasPrefix(p, "archive/prices/"), p)
	}
}
