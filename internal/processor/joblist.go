package processor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ProcessList runs Process for every URL in a job file. A failed URL does not stop the rest.
func (p *implProcessor) ProcessList(ctx context.Context, listPath string) error {
	f, err := os.Open(listPath)
	if err != nil {
		return fmt.Errorf("open job file: %w", err)
	}
	urls, err := parseURLList(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read job file: %w", err)
	}

	if len(urls) == 0 {
		p.logger.Warn(ctx, "No URLs found in %s", listPath)
		return nil
	}

	var errs []error
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		p.logger.Info(ctx, "[%d/%d] %s", i+1, len(urls), url)
		if _, err := p.Process(ctx, url); err != nil {
			p.logger.Error(ctx, "Failed to process %s: %v", url, err)
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
		}
	}

	return errors.Join(errs...)
}

// HandleJob processes a job file dropped into the inbox, then archives it.
// The file is archived even when some URLs failed so it is not picked up again.
func (p *implProcessor) HandleJob(ctx context.Context, listPath string) error {
	procErr := p.ProcessList(ctx, listPath)
	if ctx.Err() != nil {
		return procErr
	}

	if err := p.moveToArchived(ctx, listPath); err != nil {
		return errors.Join(procErr, fmt.Errorf("archive job file: %w", err))
	}
	return procErr
}

// parseURLList returns one URL per non-empty line, skipping # comments
func parseURLList(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
