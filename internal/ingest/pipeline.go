package ingest

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/summit-locator/internal/domain"
	"github.com/summit-locator/internal/repository/sqlite"
	"go.uber.org/zap"
)

const (
	// headerLines - строка с датой выгрузки и строка заголовков колонок
	headerLines = 2

	progressEvery = 10000
	maxLineBytes  = 1 << 20
)

var (
	ErrSourceUnavailable = errors.New("source file unavailable")
	ErrOutputUnwritable  = errors.New("output location is not writable")
)

// RowWriter принимает проверенные вершины; *sqlite.SummitWriter реализует его
type RowWriter interface {
	Write(ctx context.Context, s *domain.Summit) error
}

// Counts - счётчики одного прохода по источнику
type Counts struct {
	Lines     int
	Processed int
	Skipped   int
	Errored   int
}

// Options - параметры запуска конвейера
type Options struct {
	SourcePath string
	OutputPath string
	BatchSize  int
	TopGroups  int
}

// Pipeline превращает текстовый список вершин в DatabaseBlob
type Pipeline struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewPipeline(logger *zap.Logger) *Pipeline {
	return &Pipeline{logger: logger, now: time.Now}
}

// Run выполняет полный проход: источник -> рабочая база -> единый файл блоба.
// Ошибки подготовки (нет источника, нельзя писать результат) фатальны.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	started := p.now()

	src, err := os.Open(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer src.Close()

	if err := ensureWritableDir(filepath.Dir(opts.OutputPath)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputUnwritable, err)
	}

	workDir, err := os.MkdirTemp("", "summit-ingest-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	db, err := sqlite.Open(ctx, filepath.Join(workDir, "work.db"), p.logger)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	writer, err := sqlite.NewSummitWriter(ctx, db, opts.BatchSize, p.logger)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Ingestion started",
		zap.String("source", opts.SourcePath),
		zap.String("output", opts.OutputPath),
		zap.Int("batch_size", opts.BatchSize))

	counts, err := p.Ingest(ctx, src, writer)
	if err != nil {
		writer.Abort()
		return nil, err
	}

	if err := writer.Finish(ctx, filepath.Base(opts.SourcePath), started); err != nil {
		return nil, err
	}

	size, err := db.ExportBlob(ctx, opts.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputUnwritable, err)
	}

	groups, err := db.AssociationCounts(ctx)
	if err != nil {
		return nil, err
	}

	checksum, err := fileSHA256(opts.OutputPath)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Counts:       *counts,
		OutputPath:   opts.OutputPath,
		OutputSize:   size,
		SHA256:       checksum,
		Associations: groups,
		TopGroups:    opts.TopGroups,
		BuiltAt:      started,
		Elapsed:      p.now().Sub(started),
	}

	p.logger.Info("Ingestion finished",
		zap.Int("processed", counts.Processed),
		zap.Int("skipped", counts.Skipped),
		zap.Int("errored", counts.Errored),
		zap.Int64("size_bytes", size),
		zap.Duration("elapsed", report.Elapsed))

	return report, nil
}

// Ingest читает источник построчно и отдаёт проверенные строки писателю.
// Битая строка пропускается, сбой записи одной строки считается ошибкой строки, проход продолжается.
func (p *Pipeline) Ingest(ctx context.Context, r io.Reader, w RowWriter) (*Counts, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	counts := &Counts{}
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		if lineNo <= headerLines {
			continue
		}

		line := trimLineEnd(scanner.Text())
		if line == "" {
			continue
		}
		counts.Lines++

		row, err := ParseRow(ParseLine(line), lineNo)
		if err != nil {
			counts.Skipped++
			p.logger.Debug("Row skipped", zap.Int("line", lineNo), zap.Error(err))
			continue
		}

		if err := p.writeRow(ctx, w, row); err != nil {
			var rowErr *sqlite.RowError
			if !errors.As(err, &rowErr) && !errors.Is(err, errRowPanic) {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			counts.Errored++
			p.logger.Warn("Row failed", zap.Int("line", lineNo), zap.String("ref", row.Ref), zap.Error(err))
			continue
		}
		counts.Processed++

		if counts.Lines%progressEvery == 0 {
			p.logger.Info("Ingestion progress",
				zap.Int("lines", counts.Lines),
				zap.Int("processed", counts.Processed),
				zap.Int("skipped", counts.Skipped))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return counts, nil
}

var errRowPanic = errors.New("panic while writing row")

func (p *Pipeline) writeRow(ctx context.Context, w RowWriter, row *ParsedRow) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errRowPanic, r)
		}
	}()
	return w.Write(ctx, row.Summit())
}

func trimLineEnd(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\r' || s[len(s)-1] == '\n') {
		s = s[:len(s)-1]
	}
	return s
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open blob: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash blob: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
