// Package report exports one link run as a JSON file, the operator
// surface for unmatched-ratio review.
package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/epl-data/xreflink/internal/platform/logging"
	"github.com/epl-data/xreflink/internal/usecase"
)

type payload struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Run         usecase.LinkResult `json:"run"`
}

// Writer writes run reports to a fixed path, replacing the previous
// report the same way the stores replace their snapshots.
type Writer struct {
	path   string
	logger *logging.Logger

	now func() time.Time
}

func NewWriter(path string, logger *logging.Logger) *Writer {
	if logger == nil {
		logger = logging.Default()
	}

	return &Writer{
		path:   strings.TrimSpace(path),
		logger: logger,
		now:    time.Now,
	}
}

func (w *Writer) Write(ctx context.Context, result usecase.LinkResult) error {
	if w.path == "" {
		return crerr.New("report path is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := sonic.ConfigDefault.NewEncoder(buf)
	if err := enc.Encode(payload{GeneratedAt: w.now().UTC(), Run: result}); err != nil {
		return crerr.Wrapf(err, "encode link report source=%s", result.TargetSource)
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return crerr.Wrapf(err, "create report dir %s", dir)
		}
	}
	if err := os.WriteFile(w.path, buf.Bytes(), 0o644); err != nil {
		return crerr.Wrapf(err, "write link report %s", w.path)
	}

	w.logger.InfoContext(ctx, "link report written",
		"path", w.path,
		"bytes", buf.Len(),
		"unmatched", result.Summary.Unmatched,
	)
	return nil
}
