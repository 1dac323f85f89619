package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"smart-grocery/internal/receipt"

	"github.com/sirupsen/logrus"
)

// RecordReceipt parses receipt HTML and records its items as one basket.
func (a *App) RecordReceipt(ctx context.Context, r io.Reader, selector string) (int64, []string, error) {
	items, err := receipt.Parse(r, selector)
	if err != nil {
		return 0, nil, err
	}
	return a.recordItems(ctx, items)
}

// ImportReceipt reads a receipt from a local file or an http(s) URL and
// records it as a basket.
func (a *App) ImportReceipt(ctx context.Context, source, selector string) (int64, []string, error) {
	var (
		items []string
		err   error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		items, err = receipt.Fetch(ctx, source, selector)
	} else {
		var f *os.File
		f, err = os.Open(source)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to open receipt: %w", err)
		}
		defer f.Close()
		items, err = receipt.Parse(f, selector)
	}
	if err != nil {
		return 0, nil, err
	}
	return a.recordItems(ctx, items)
}

func (a *App) recordItems(ctx context.Context, items []string) (int64, []string, error) {
	id, err := a.Journal.Record(ctx, items)
	if err != nil {
		return 0, items, err
	}
	a.logger.WithFields(logrus.Fields{"basketID": id, "items": len(items)}).Info("receipt recorded")
	return id, items, nil
}
