package blobfetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/summit-locator/internal/config"
	"github.com/summit-locator/internal/domain/repository"
	"go.uber.org/zap"
)

// progressStep - минимальный шаг между вызовами ProgressFunc
const progressStep = 64 * 1024

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrIncompleteBody   = errors.New("incomplete response body")
)

type client struct {
	httpClient *http.Client
	url        string
	logger     *zap.Logger
}

// NewClient создает загрузчик блоба по адресу BaseURL + BlobPath.
// Кроме http(s) поддерживается file://, чтобы указывать на локально собранный блоб.
func NewClient(cfg *config.LoaderConfig, logger *zap.Logger) (repository.BlobFetcher, error) {
	blobURL, err := url.JoinPath(cfg.BaseURL, cfg.BlobPath)
	if err != nil {
		return nil, fmt.Errorf("invalid blob url: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &client{
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		url:    blobURL,
		logger: logger,
	}, nil
}

// Fetch скачивает блоб, сообщая о прогрессе не чаще раза в progressStep байт и один раз в конце
func (c *client) Fetch(ctx context.Context, progress repository.ProgressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Info("Downloading summit blob", zap.String("url", c.url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Blob source returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("url", c.url))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}

	pr := &progressReader{r: resp.Body, total: total, fn: progress}
	if _, err := io.Copy(&buf, pr); err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	pr.report()

	if total > 0 && int64(buf.Len()) != total {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrIncompleteBody, buf.Len(), total)
	}

	c.logger.Info("Summit blob downloaded", zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// progressReader считает прочитанные байты
type progressReader struct {
	r        io.Reader
	fn       repository.ProgressFunc
	total    int64
	loaded   int64
	reported int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.loaded += int64(n)
	if p.fn != nil && p.loaded-p.reported >= progressStep {
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.fn == nil {
		return
	}
	p.reported = p.loaded
	p.fn(p.loaded, p.total)
}
