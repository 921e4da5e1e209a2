package ingest

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/summit-locator/internal/domain"
)

// Report - итог одного прогона конвейера
type Report struct {
	Counts
	OutputPath   string
	OutputSize   int64
	SHA256       string
	Associations []domain.AssociationCount
	TopGroups    int
	BuiltAt      time.Time
	Elapsed      time.Duration
}

// Version - метка сборки, по которой клиенты отличают одну выгрузку от другой
func (r *Report) Version() string {
	return r.BuiltAt.UTC().Format("20060102T150405Z")
}

// Event строит событие о публикации новой сборки
func (r *Report) Event(publishedAt time.Time) *domain.DatasetUpdatedEvent {
	return &domain.DatasetUpdatedEvent{
		ID:          uuid.New(),
		Version:     r.Version(),
		SizeBytes:   r.OutputSize,
		SHA256:      r.SHA256,
		Summits:     r.Processed,
		PublishedAt: publishedAt,
	}
}

// Print пишет человекочитаемую сводку
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "Ingestion summary")
	fmt.Fprintf(w, "  processed:    %d\n", r.Processed)
	fmt.Fprintf(w, "  skipped:      %d\n", r.Skipped)
	fmt.Fprintf(w, "  errored:      %d\n", r.Errored)
	fmt.Fprintf(w, "  output:       %s\n", r.OutputPath)
	fmt.Fprintf(w, "  output size:  %s (%d bytes)\n", humanSize(r.OutputSize), r.OutputSize)
	fmt.Fprintf(w, "  sha256:       %s\n", r.SHA256)
	fmt.Fprintf(w, "  elapsed:      %s\n", r.Elapsed.Round(time.Millisecond))

	top := r.TopGroups
	if top <= 0 || top > len(r.Associations) {
		top = len(r.Associations)
	}
	fmt.Fprintf(w, "  associations: %d (top %d)\n", len(r.Associations), top)
	for _, g := range r.Associations[:top] {
		fmt.Fprintf(w, "    %-40s %7d\n", g.Association, g.Count)
	}
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
