// Package summary turns a web page into a summarisation prompt.
package summary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/124.0.0.0 Safari/537.36"
	maxBody = 5 << 20
)

var ErrUnsupportedContent = errors.New("unsupported content-type")

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Page is the readable part of a web page.
type Page struct {
	Title   string
	URL     string
	Content string
}

type Fetcher struct {
	client httpDoer
}

// NewFetcher using client, or a client with a 10s timeout if nil.
func NewFetcher(client httpDoer) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Fetcher{client: client}
}

// FetchPage downloads rawURL and extracts its title and text.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("invalid url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Page{}, fmt.Errorf("bad status: %s", resp.Status)
	}

	ctype := resp.Header.Get("Content-Type")
	if ctype != "" &&
		!strings.Contains(ctype, "text/html") &&
		!strings.Contains(ctype, "application/xhtml+xml") &&
		!strings.Contains(ctype, "text/plain") {
		return Page{}, fmt.Errorf("%w: %s", ErrUnsupportedContent, ctype)
	}

	var r io.Reader = io.LimitReader(resp.Body, maxBody)
	if ur, err := charset.NewReader(r, ctype); err == nil {
		r = ur
	}
	title, content, err := Extract(r)
	if err != nil {
		return Page{}, err
	}
	return Page{Title: title, URL: u.String(), Content: content}, nil
}

var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
	"iframe":   true,
	"svg":      true,
	"canvas":   true,
	"template": true,
	"nav":      true,
	"footer":   true,
}

var blockTags = map[string]bool{
	"p":       true,
	"div":     true,
	"li":      true,
	"section": true,
	"article": true,
	"main":    true,
	"h1":      true,
	"h2":      true,
	"h3":      true,
	"h4":      true,
	"h5":      true,
	"h6":      true,
	"header":  true,
	"br":      true,
	"ul":      true,
	"ol":      true,
	"pre":     true,
	"table":   true,
	"tr":      true,
}

// Extract the document title and its readable text. Navigation, footers
// and non-text elements are dropped.
func Extract(r io.Reader) (title, content string, err error) {
	tokenizer := html.NewTokenizer(r)
	skipDepth := 0
	inTitle := false
	var text, titleText strings.Builder

	writeNL := func() {
		s := text.String()
		if len(s) > 0 && s[len(s)-1] != '\n' {
			text.WriteByte('\n')
		}
	}

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if errors.Is(tokenizer.Err(), io.EOF) {
				break
			}
			return "", "", fmt.Errorf("tokenizer error: %w", tokenizer.Err())
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name := strings.ToLower(tokenizer.Token().Data)
			if name == "title" {
				inTitle = true
			}
			if skipTags[name] && tt == html.StartTagToken {
				skipDepth++
			}
			if blockTags[name] {
				writeNL()
			}
		case html.EndTagToken:
			name := strings.ToLower(tokenizer.Token().Data)
			if name == "title" {
				inTitle = false
			}
			if skipTags[name] && skipDepth > 0 {
				skipDepth--
			}
			if blockTags[name] {
				writeNL()
			}
		case html.TextToken:
			fields := bytes.Fields(tokenizer.Text())
			if len(fields) == 0 {
				continue
			}
			if inTitle {
				if titleText.Len() > 0 {
					titleText.WriteByte(' ')
				}
				titleText.Write(bytes.Join(fields, []byte(" ")))
				continue
			}
			if skipDepth > 0 {
				continue
			}
			text.Write(bytes.Join(fields, []byte(" ")))
			text.WriteByte('\n')
		}
	}

	out := strings.TrimSpace(text.String())
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return titleText.String(), out, nil
}
