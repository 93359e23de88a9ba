package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// SummaryLines is how many extracted lines feed the preview summary.
const SummaryLines = 15

// Summarize derives a crude preview: the first n lines of text joined with
// spaces and a trailing ellipsis marker. It is a placeholder preview, not a
// quality-scored summary.
func Summarize(text string, n int) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, " ") + "..."
}

// visibleText renders the selection as one trimmed line per text node,
// skipping elements that never carry readable content.
func visibleText(sel *goquery.Selection) string {
	var lines []string
	for _, node := range sel.Nodes {
		collectText(node, &lines)
	}
	return strings.Join(lines, "\n")
}

var skippedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
	"iframe":   {},
}

func collectText(n *html.Node, lines *[]string) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			*lines = append(*lines, collapseSpace(text))
		}
		return
	case html.ElementNode:
		if _, skip := skippedElements[n.Data]; skip {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, lines)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
