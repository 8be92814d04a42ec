package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// moveFile renames src to dst, copying when they live on different filesystems
func (p *implProcessor) moveFile(ctx context.Context, src, dst string) error {
	p.logger.Debug(ctx, "Moving %s -> %s", src, dst)

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// If rename fails, copy instead
	if err := p.copyFile(src, dst); err != nil {
		return fmt.Errorf("move %s: %w", filepath.Base(src), err)
	}
	if err := os.Remove(src); err != nil {
		p.logger.Warn(ctx, "Failed to remove %s after copy: %v", src, err)
	}
	return nil
}

// copyFile copies a file from src to dst
func (p *implProcessor) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("write destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write destination: %w", err)
	}
	return out.Close()
}

// moveToArchived moves a handled job file into the archived folder as
// <stem>_<time>_<id><ext> so a resubmitted job never replaces an earlier one
func (p *implProcessor) moveToArchived(ctx context.Context, path string) error {
	if err := os.MkdirAll(p.cfg.Paths.Archived, 0755); err != nil {
		return fmt.Errorf("create archived dir: %w", err)
	}
	dest := filepath.Join(p.cfg.Paths.Archived, archivedName(filepath.Base(path), time.Now()))

	p.logger.Info(ctx, "Archiving job file: %s -> %s", path, dest)
	return p.moveFile(ctx, path, dest)
}

// removeTempDir removes a scoped temp dir, logs warning if fails
func (p *implProcessor) removeTempDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup temp dir %s: %v", dir, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up temp dir: %s", dir)
	}
}

func archivedName(name string, at time.Time) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%s_%s%s", stem, at.Format("20060102-150405"), uuid.NewString()[:8], ext)
}
