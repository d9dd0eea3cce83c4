package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
	"github.com/custodia-labs/reqscan/internal/core/ports/driving"
	"github.com/custodia-labs/reqscan/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// WatchService analyses documents as they appear in a directory.
type WatchService struct {
	watcher  driven.FileWatcher
	analysis driving.AnalysisService
	exporter driven.ReportExporter
	limiter  *rate.Limiter
}

// NewWatchService creates a watch service that starts at most perMinute
// analyses per minute. A non-positive perMinute uses domain.DefaultWatchPerMinute.
func NewWatchService(
	watcher driven.FileWatcher,
	analysis driving.AnalysisService,
	exporter driven.ReportExporter,
	perMinute int,
) *WatchService {
	if perMinute <= 0 {
		perMinute = domain.DefaultWatchPerMinute
	}
	return &WatchService{
		watcher:  watcher,
		analysis: analysis,
		exporter: exporter,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

// Watch blocks until ctx is cancelled, analysing each settled PDF or DOCX
// file. Reports written by the exporter and content already analysed in
// this session are skipped.
func (s *WatchService) Watch(ctx context.Context, dir string, opts driving.WatchOptions) error {
	if s.watcher == nil {
		return fmt.Errorf("%w: file watcher not configured", domain.ErrInvalidInput)
	}

	events, err := s.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Infow("watching for documents", "dir", dir)

	done := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.handle(ctx, ev, done, opts); err != nil {
				// Only cancellation ends the loop.
				return nil
			}
		}
	}
}

// handle analyses one file event. It returns an error only when ctx was
// cancelled while waiting for the rate limiter.
func (s *WatchService) handle(ctx context.Context, ev driven.FileEvent, done map[string]bool, opts driving.WatchOptions) error {
	if _, ok := domain.FormatFromPath(ev.Path); !ok {
		return nil
	}
	if s.exporter != nil && s.exporter.IsReportPath(ev.Path) {
		logger.Debug("watch: skipping report %s", ev.Path)
		return nil
	}

	sum, err := fileHash(ev.Path)
	if err != nil {
		logger.Warn("watch: %s: %v", ev.Path, err)
		return nil
	}
	if done[sum] {
		logger.Debug("watch: %s unchanged, skipping", ev.Path)
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	logger.Infow("watch: analysing", "path", ev.Path, "event", ev.Type)
	result, err := s.analysis.Analyze(ctx, ev.Path, opts.Analyze)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		logger.Error("watch: %s: %v", ev.Path, err)
	} else {
		done[sum] = true
	}
	if opts.OnResult != nil {
		if err != nil {
			result = nil
		}
		opts.OnResult(ev.Path, result, err)
	}
	return nil
}

// fileHash returns the hex SHA-256 of the file at path.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
