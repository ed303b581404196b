// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves readable article text for a URL.
//
// Two methods are tried in order, each exactly once. The primary method keeps
// only the page's main-content container and is accepted when it yields
// enough text. The fallback method parses the whole page with a browser
// User-Agent, strips boilerplate elements, and truncates the result. Hosts
// that are known to defeat the primary method go straight to the fallback.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/pdiddy/article-graph/internal/httputil"
	"github.com/pdiddy/article-graph/pkg/types"
)

const (
	defaultTimeout         = 20 * time.Second
	defaultMinPrimaryChars = 200
	defaultMaxChars        = 10000
	defaultUserAgent       = "article-graph/0.1"
	defaultBrowserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// DefaultFallbackDomains are hosts whose pages go straight to the fallback parser.
var DefaultFallbackDomains = []string{"nature.com", "sciencedirect.com", "ncbi.nlm.nih.gov"}

// ErrNoContent is returned when neither method produced usable text.
var ErrNoContent = errors.New("no article text retrieved")

// mainSelectors are tried in order by the primary method.
var mainSelectors = []string{"article", "main", "[role=main]", "#content", ".content"}

// boilerplate is removed before text is collected.
const boilerplate = "script, style, noscript, nav, footer, header, aside, form, iframe, svg"

// Fetcher retrieves article text. It holds no state between calls.
type Fetcher struct {
	client *http.Client
	cfg    types.FetchConfig
	log    *zap.SugaredLogger
}

// New builds a Fetcher, filling zero-valued settings with defaults.
// A nil client gets one with cfg.Timeout; a nil logger discards output.
func New(client *http.Client, cfg types.FetchConfig, log *zap.SugaredLogger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MinPrimaryChars <= 0 {
		cfg.MinPrimaryChars = defaultMinPrimaryChars
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = defaultMaxChars
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.BrowserUserAgent == "" {
		cfg.BrowserUserAgent = defaultBrowserAgent
	}
	if cfg.FallbackDomains == nil {
		cfg.FallbackDomains = DefaultFallbackDomains
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Fetcher{client: client, cfg: cfg, log: log}
}

// Fetch returns the article text at rawURL. It wraps ErrNoContent when both
// methods come back empty; the fallback's own error, if any, is included.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	if f.forceFallback(u.Hostname()) {
		f.log.Debugw("using fallback for host", "host", u.Hostname())
	} else {
		text, err := f.primary(ctx, rawURL)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		f.log.Debugw("primary fetch failed, using fallback", "url", rawURL, "error", err)
	}

	text, err := f.fallback(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

// forceFallback reports whether host is, or is a subdomain of, a configured
// fallback domain.
func (f *Fetcher) forceFallback(host string) bool {
	host = strings.ToLower(host)
	for _, d := range f.cfg.FallbackDomains {
		d = strings.ToLower(strings.TrimPrefix(d, "."))
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// primary extracts the main-content container's text and accepts it only
// when it is longer than MinPrimaryChars.
func (f *Fetcher) primary(ctx context.Context, rawURL string) (string, error) {
	doc, err := f.load(ctx, rawURL, f.cfg.UserAgent)
	if err != nil {
		return "", err
	}
	text := MainText(doc)
	if len([]rune(text)) <= f.cfg.MinPrimaryChars {
		return "", fmt.Errorf("main content too short (%d chars)", len([]rune(text)))
	}
	return text, nil
}

// fallback extracts all readable page text with boilerplate removed.
func (f *Fetcher) fallback(ctx context.Context, rawURL string) (string, error) {
	doc, err := f.load(ctx, rawURL, f.cfg.BrowserUserAgent)
	if err != nil {
		return "", err
	}
	return truncate(PageText(doc), f.cfg.MaxChars), nil
}

func (f *Fetcher) load(ctx context.Context, rawURL, userAgent string) (*goquery.Document, error) {
	body, err := httputil.Get(ctx, f.client, rawURL, userAgent, 0)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// MainText returns the text of the first main-content container found in
// doc, or the paragraph text of the whole body when none exists. Each
// paragraph, heading, list item or quote becomes one line; a list item
// holding a nested list keeps its own text on a line before its children.
func MainText(doc *goquery.Document) string {
	doc.Find(boilerplate).Remove()

	scope := doc.Selection
	for _, sel := range mainSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			scope = s
			break
		}
	}

	var (
		paras []string
		cur   strings.Builder
	)
	flush := func() {
		if t := collapse(cur.String()); t != "" {
			paras = append(paras, t)
		}
		cur.Reset()
	}

	var walk func(n *html.Node, inBlock bool)
	walk = func(n *html.Node, inBlock bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				if inBlock {
					cur.WriteString(c.Data)
				}
			case c.Type == html.ElementNode && paragraphTags[c.Data]:
				flush()
				walk(c, true)
				flush()
			case c.Type == html.ElementNode && c.Data == "br":
				cur.WriteByte(' ')
			default:
				walk(c, inBlock)
			}
		}
	}
	for _, n := range scope.Nodes {
		walk(n, false)
	}
	flush()
	return strings.Join(paras, "\n")
}

// PageText returns the whitespace-collapsed text of the whole page with
// boilerplate elements removed. Text from separate block elements is
// separated by a space even when the markup has none between tags.
func PageText(doc *goquery.Document) string {
	doc.Find(boilerplate).Remove()
	scope := doc.Find("body")
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				if inlineTags[c.Data] {
					walk(c)
					continue
				}
				b.WriteByte(' ')
				walk(c)
				b.WriteByte(' ')
			default:
				walk(c)
			}
		}
	}
	for _, n := range scope.Nodes {
		walk(n)
	}
	return collapse(b.String())
}

// paragraphTags are the elements MainText turns into lines.
var paragraphTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"li": true, "blockquote": true,
}

// inlineTags do not break words apart in PageText.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "cite": true,
	"code": true, "data": true, "dfn": true, "em": true, "font": true, "i": true,
	"kbd": true, "mark": true, "q": true, "s": true, "samp": true, "small": true,
	"span": true, "strong": true, "sub": true, "sup": true, "time": true,
	"u": true, "var": true, "wbr": true,
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
