// Package extract locates the main content region of an HTML document using
// an ordered list of heuristic strategies.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one best-effort rule for locating article text. Extract returns
// the text and true when the rule matched and produced non-empty content.
type Strategy struct {
	Name    string
	Extract func(doc *goquery.Document) (string, bool)
}

// SelectorStrategy extracts visible text from the first element matching the
// CSS selector.
func SelectorStrategy(selector string) Strategy {
	return Strategy{
		Name: selector,
		Extract: func(doc *goquery.Document) (string, bool) {
			sel := doc.Find(selector).First()
			if sel.Length() == 0 {
				return "", false
			}
			text := visibleText(sel)
			return text, text != ""
		},
	}
}

// FullTextStrategy extracts all visible text from the page body. It is the
// recall-maximizing last resort when no container selector matches.
func FullTextStrategy() Strategy {
	return Strategy{
		Name: "full_text",
		Extract: func(doc *goquery.Document) (string, bool) {
			sel := doc.Find("body")
			if sel.Length() == 0 {
				sel = doc.Selection
			}
			text := visibleText(sel)
			return text, text != ""
		},
	}
}

// DefaultStrategies returns the production strategy order. Narrow semantic
// containers come first so boilerplate (nav, footer, ads) is excluded when a
// proper article container exists.
func DefaultStrategies() []Strategy {
	return []Strategy{
		SelectorStrategy("article"),
		SelectorStrategy("main"),
		SelectorStrategy(".post-content"),
		SelectorStrategy(".article-body"),
		SelectorStrategy("#content"),
	}
}

// Result is the outcome of extracting one document.
type Result struct {
	Title    string
	Text     string
	Strategy string
}

// Extractor applies strategies in order and falls back to full page text.
type Extractor struct {
	strategies []Strategy
	fallback   Strategy
}

// New builds an Extractor. With no arguments it uses DefaultStrategies.
func New(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Extractor{
		strategies: strategies,
		fallback:   FullTextStrategy(),
	}
}

// Extract parses the markup and returns the page title plus the first
// non-empty strategy match. An unparseable document is an error; a parseable
// document with no text at all yields an empty Result.Text.
func (e *Extractor) Extract(html string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{}, fmt.Errorf("parse html: %w", err)
	}

	res := Result{Title: pageTitle(doc)}
	for _, s := range e.strategies {
		if text, ok := s.Extract(doc); ok {
			res.Text = text
			res.Strategy = s.Name
			return res, nil
		}
	}
	if text, ok := e.fallback.Extract(doc); ok {
		res.Text = text
		res.Strategy = e.fallback.Name
	}
	return res, nil
}

func pageTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return "No Title Found"
	}
	return title
}
