package testhelpers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/summit-locator/internal/domain"
	"github.com/summit-locator/internal/repository/sqlite"
	"go.uber.org/zap"
)

// BuiltAt - фиксированное время сборки тестовых блобов
var BuiltAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// BuildBlobFile пишет вершины настоящим писателем и возвращает путь к готовому блобу
func BuildBlobFile(t testing.TB, summits []domain.Summit) string {
	t.Helper()

	ctx := context.Background()
	dir := t.TempDir()
	logger := zap.NewNop()

	db, err := sqlite.Open(ctx, filepath.Join(dir, "work.db"), logger)
	require.NoError(t, err)
	defer db.Close()

	writer, err := sqlite.NewSummitWriter(ctx, db, 2, logger)
	require.NoError(t, err)

	for i := range summits {
		s := summits[i]
		require.NoError(t, writer.Write(ctx, &s))
	}
	require.NoError(t, writer.Finish(ctx, "fixture.csv", BuiltAt))

	out := filepath.Join(dir, "summits.db")
	_, err = db.ExportBlob(ctx, out)
	require.NoError(t, err)

	return out
}

// BuildBlob - то же, что BuildBlobFile, но возвращает содержимое файла
func BuildBlob(t testing.TB, summits []domain.Summit) []byte {
	t.Helper()

	blob, err := os.ReadFile(BuildBlobFile(t, summits))
	require.NoError(t, err)
	return blob
}

// NewSummit - вершина с разумными значениями по умолчанию
func NewSummit(ref, name string, lat, lon float64, altitude, points int) domain.Summit {
	assoc, region := splitRef(ref)
	return domain.Summit{
		Ref:         ref,
		Name:        name,
		Lat:         lat,
		Lon:         lon,
		Altitude:    altitude,
		Points:      points,
		Association: assoc,
		Region:      region,
	}
}

// SampleSummits - небольшой набор вершин из нескольких ассоциаций
func SampleSummits() []domain.Summit {
	summits := []domain.Summit{
		NewSummit("JA/NS-001", "Yarigatake", 36.3417, 137.6478, 3180, 10),
		NewSummit("JA/NS-002", "Hotakadake", 36.2892, 137.6479, 3190, 10),
		NewSummit("JA/TK-001", "Kumotoriyama", 35.8556, 138.9436, 2017, 10),
		NewSummit("JA/KN-001", "Hirugatake", 35.4636, 139.1403, 1673, 8),
		NewSummit("W7A/AE-001", "Humphreys Peak", 35.3464, -111.6780, 3851, 10),
		NewSummit("G/LD-001", "Scafell Pike", 54.4542, -3.2114, 978, 10),
		NewSummit("G/LD-002", "Helvellyn", 54.5275, -3.0164, 950, 10),
		NewSummit("ZL1/AK-001", "Rangitoto", -36.7867, 174.8600, 260, 1),
	}
	summits[0].Activations = 42
	summits[2].Activations = 7
	bonus := 3
	summits[0].Bonus = &bonus
	return summits
}

func splitRef(ref string) (string, string) {
	assoc, rest, _ := strings.Cut(ref, "/")
	region, _, _ := strings.Cut(rest, "-")
	return assoc, region
}
