package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summit-locator/internal/domain"
	"github.com/summit-locator/internal/repository/sqlite"
	"github.com/summit-locator/internal/store"
	"go.uber.org/zap"
)

const sourceHeader = "SOTA Summits List (Date=01/05/2024)\n" +
	"SummitCode,AssociationName,RegionName,SummitName,AltM,AltFt,GridRef1,GridRef2,Longitude,Latitude,Points,BonusPoints,ValidFrom,ValidTo,ActivationCount,ActivationDate,ActivationCall\n"

const threeRows = sourceHeader +
	"JA/NS-001,Japan,Nagano,Tokyo Peak,100,328,,,139.7,35.6,1,,,,0,,\n" +
	"JA/NS-002,Japan,Nagano,Polar Error,100,328,,,139.7,95,1,,,,0,,\n" +
	"JA/NS-003,Japan,Nagano,\"Mount, Comma\",200,656,,,139.8,35.7,2,,,,5,,\r\n"

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "summitslist.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "out", "summits.db")

	p := NewPipeline(zap.NewNop())
	report, err := p.Run(ctx, Options{
		SourcePath: writeSource(t, threeRows),
		OutputPath: out,
		BatchSize:  1000,
		TopGroups:  5,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Errored)
	assert.Equal(t, out, report.OutputPath)
	assert.Len(t, report.SHA256, 64)
	assert.Equal(t, []domain.AssociationCount{{Association: "Japan", Count: 2}}, report.Associations)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), report.OutputSize)

	// рядом с результатом не должно остаться временных и журнальных файлов
	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "summits.db", entries[0].Name())

	blob, err := os.ReadFile(out)
	require.NoError(t, err)
	st, err := store.Load(ctx, blob, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, st.Count())

	s, ok := st.FindByRef("JA/NS-001")
	require.True(t, ok)
	assert.Equal(t, 100, s.Altitude)
	assert.Equal(t, 1, s.Points)
	assert.Equal(t, 35.6, s.Lat)
	assert.Equal(t, 139.7, s.Lon)

	quoted, ok := st.FindByRef("JA/NS-003")
	require.True(t, ok)
	assert.Equal(t, "Mount, Comma", quoted.Name)
	assert.Equal(t, 5, quoted.Activations)

	_, ok = st.FindByRef("JA/NS-002")
	assert.False(t, ok)
}

func TestPipeline_Run_MissingSource(t *testing.T) {
	p := NewPipeline(zap.NewNop())
	_, err := p.Run(context.Background(), Options{
		SourcePath: filepath.Join(t.TempDir(), "absent.csv"),
		OutputPath: filepath.Join(t.TempDir(), "summits.db"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestPipeline_Run_UnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	p := NewPipeline(zap.NewNop())
	_, err := p.Run(context.Background(), Options{
		SourcePath: writeSource(t, threeRows),
		// родитель - обычный файл, каталог создать нельзя
		OutputPath: filepath.Join(blocker, "summits.db"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutputUnwritable)
}

type recordingWriter struct {
	written []string
	failOn  map[string]error
	panicOn string
}

func (w *recordingWriter) Write(_ context.Context, s *domain.Summit) error {
	if s.Ref == w.panicOn {
		panic("boom")
	}
	if err, ok := w.failOn[s.Ref]; ok {
		return err
	}
	w.written = append(w.written, s.Ref)
	return nil
}

func TestPipeline_Ingest_RowFailuresDoNotStopIngestion(t *testing.T) {
	src := sourceHeader +
		"JA/NS-001,Japan,Nagano,One,100,328,,,139.7,35.6,1,,,\n" +
		"JA/NS-002,Japan,Nagano,Two,100,328,,,139.7,35.6,1,,,\n" +
		"\n" +
		"JA/NS-003,Japan,Nagano,Three,100,328,,,139.7,35.6,1,,,\n" +
		"JA/NS-004,Japan,Nagano,Four,100,328,,,139.7,35.6,1,,,\n" +
		"garbage line\n"

	w := &recordingWriter{
		failOn:  map[string]error{"JA/NS-002": &sqlite.RowError{Ref: "JA/NS-002", Err: errors.New("constraint")}},
		panicOn: "JA/NS-003",
	}

	counts, err := NewPipeline(zap.NewNop()).Ingest(context.Background(), strings.NewReader(src), w)
	require.NoError(t, err)

	assert.Equal(t, 5, counts.Lines)
	assert.Equal(t, 2, counts.Processed)
	assert.Equal(t, 1, counts.Skipped)
	assert.Equal(t, 2, counts.Errored)
	assert.Equal(t, []string{"JA/NS-001", "JA/NS-004"}, w.written)
}

func TestPipeline_Run_MalformedRefIsSkipped(t *testing.T) {
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "summits.db")
	src := sourceHeader +
		"JA/NS-001,Japan,Nagano,One,100,328,,,139.7,35.6,1,,,\n" +
		"JA-NS-002,Japan,Nagano,Two,100,328,,,139.7,35.6,1,,,\n"

	report, err := NewPipeline(zap.NewNop()).Run(ctx, Options{
		SourcePath: writeSource(t, src),
		OutputPath: out,
		BatchSize:  1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)

	blob, err := os.ReadFile(out)
	require.NoError(t, err)
	st, err := store.Load(ctx, blob, zap.NewNop())
	require.NoError(t, err)

	// всё, что попало в базу, находится по своему коду
	require.Equal(t, 1, st.Count())
	_, ok := st.FindByRef("JA/NS-001")
	assert.True(t, ok)
}

func TestPipeline_Ingest_FatalWriterError(t *testing.T) {
	src := sourceHeader + "JA/NS-001,Japan,Nagano,One,100,328,,,139.7,35.6,1,,,\n"
	w := &recordingWriter{failOn: map[string]error{"JA/NS-001": errors.New("disk full")}}

	_, err := NewPipeline(zap.NewNop()).Ingest(context.Background(), strings.NewReader(src), w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPipeline_Run_DuplicateRefIsErrored(t *testing.T) {
	src := sourceHeader +
		"JA/NS-001,Japan,Nagano,One,100,328,,,139.7,35.6,1,,,\n" +
		"JA/NS-001,Japan,Nagano,Again,150,492,,,139.8,35.7,1,,,\n" +
		"JA/NS-002,Japan,Nagano,Two,200,656,,,139.9,35.8,2,,,\n"

	out := filepath.Join(t.TempDir(), "summits.db")
	report, err := NewPipeline(zap.NewNop()).Run(context.Background(), Options{
		SourcePath: writeSource(t, src),
		OutputPath: out,
		BatchSize:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Errored)

	blob, err := os.ReadFile(out)
	require.NoError(t, err)
	st, err := store.Load(context.Background(), blob, zap.NewNop())
	require.NoError(t, err)

	first, ok := st.FindByRef("JA/NS-001")
	require.True(t, ok)
	assert.Equal(t, "One", first.Name)

	// id плотные: упавшая строка не оставляет дыры
	second, ok := st.FindByRef("JA/NS-002")
	require.True(t, ok)
	assert.Equal(t, int64(2), second.ID)
}

func TestReport_Print(t *testing.T) {
	r := &Report{
		Counts:     Counts{Processed: 10, Skipped: 2, Errored: 1},
		OutputPath: "/tmp/summits.db",
		OutputSize: 3 * 1024 * 1024,
		SHA256:     "abc",
		Associations: []domain.AssociationCount{
			{Association: "Japan", Count: 6},
			{Association: "England", Count: 3},
			{Association: "Wales", Count: 1},
		},
		TopGroups: 2,
	}

	var buf bytes.Buffer
	r.Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "processed:    10")
	assert.Contains(t, out, "skipped:      2")
	assert.Contains(t, out, "errored:      1")
	assert.Contains(t, out, "3.0 MiB")
	assert.Contains(t, out, "associations: 3 (top 2)")
	assert.Contains(t, out, "Japan")
	assert.Contains(t, out, "England")
	assert.NotContains(t, out, "Wales")
}

func TestReport_Event(t *testing.T) {
	builtAt := time.Date(2026, 3, 1, 4, 5, 6, 0, time.FixedZone("JST", 9*3600))
	r := &Report{
		Counts:     Counts{Processed: 42},
		OutputSize: 8192,
		SHA256:     "deadbeef",
		BuiltAt:    builtAt,
	}

	publishedAt := builtAt.Add(time.Minute)
	event := r.Event(publishedAt)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "20260228T190506Z", event.Version)
	assert.Equal(t, int64(8192), event.SizeBytes)
	assert.Equal(t, "deadbeef", event.SHA256)
	assert.Equal(t, 42, event.Summits)
	assert.True(t, publishedAt.Equal(event.PublishedAt))
}
