// Package receipt turns an HTML purchase receipt into a basket of item names.
package receipt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSelector matches the line items of common e-receipt templates.
const DefaultSelector = ".item-name, .line-item .name, td.item, li.item"

// fallbackSelector is used when DefaultSelector matches nothing.
const fallbackSelector = "li"

var (
	// "2 x milk", "3x eggs", "1 @ bread"
	quantityPrefix = regexp.MustCompile(`^\d+\s*(x|@)\s*`)
	// "milk $1.99", "bread 2,49 €", "eggs ... 3.10"
	pricePattern = regexp.MustCompile(`[\s.]*[$€£]?\s*\d+[.,]\d{2}\s*[$€£]?$`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Parse extracts item names from receipt HTML. selector picks the elements
// holding one item each; an empty selector uses DefaultSelector and then
// falls back to list items. Quantities and prices are stripped, names are
// lower-cased, and duplicates keep their first position.
func Parse(r io.Reader, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt html: %w", err)
	}

	// Remove noise before matching.
	doc.Find("script, style, nav, footer, iframe, .ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	sel := selector
	if sel == "" {
		sel = DefaultSelector
	}
	matches := doc.Find(sel)
	if matches.Length() == 0 && selector == "" {
		matches = doc.Find(fallbackSelector)
	}

	seen := make(map[string]struct{})
	var items []string
	matches.Each(func(i int, s *goquery.Selection) {
		name := cleanLine(s.Text())
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		items = append(items, name)
	})
	return items, nil
}

func cleanLine(text string) string {
	line := whitespace.ReplaceAllString(strings.TrimSpace(text), " ")
	line = quantityPrefix.ReplaceAllString(line, "")
	line = pricePattern.ReplaceAllString(line, "")
	return strings.ToLower(strings.TrimSpace(line))
}

// Fetch downloads a receipt page and parses it.
func Fetch(ctx context.Context, url, selector string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	return Parse(resp.Body, selector)
}
