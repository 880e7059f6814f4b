// Package collect finds every exam document under a source for --all mode.
// A source is a directory, a single file, or a URL. URLs are explored via
// sitemap.xml first and BFS link extraction second.
package collect

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/fetch"
)

// MaxPages bounds how many HTML pages a URL crawl will fetch.
const MaxPages = 100

var (
	selLinks    = cascadia.MustCompile("a[href], link[rel=alternate][type='application/json'][href]")
	selEmbedded = cascadia.MustCompile(`script#exam[type="application/json"]`)
)

// sitemapURL holds a URL from a sitemap.xml.
type sitemapURL struct {
	Loc string `xml:"loc"`
}

// sitemapIndex is the root element of a sitemap.xml.
type sitemapIndex struct {
	URLs []sitemapURL `xml:"url"`
}

// DiscoverAll returns every exam document reachable from src, in a stable
// order.
func DiscoverAll(ctx context.Context, src string, fetcher core.Fetcher) ([]string, error) {
	if fetch.IsURL(src) {
		return discoverURL(ctx, src, fetcher)
	}
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	if !info.IsDir() {
		return []string{src}, nil
	}
	return discoverDir(src)
}

// discoverDir walks root for exam documents. WalkDir visits entries in
// lexical order, so the result is sorted.
func discoverDir(root string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsExamDocument(p) {
			docs = append(docs, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return docs, nil
}

func discoverURL(ctx context.Context, baseURL string, fetcher core.Fetcher) ([]string, error) {
	if IsExamDocument(baseURL) {
		return []string{NormalizeURL(baseURL)}, nil
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	domain := parsed.Host

	sitemapURLStr := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, domain)
	docs, err := discoverFromSitemap(ctx, sitemapURLStr, domain, fetcher)
	if err == nil && len(docs) > 0 {
		return docs, nil
	}
	core.Logger().Debug("no usable sitemap, crawling links", "url", sitemapURLStr, "error", err)

	return discoverFromLinks(ctx, baseURL, domain, fetcher)
}

// discoverFromSitemap lists the exam documents named in sitemap.xml.
func discoverFromSitemap(ctx context.Context, sitemapURL string, domain string, fetcher core.Fetcher) ([]string, error) {
	res, err := fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	var sitemap sitemapIndex
	if err := xml.Unmarshal(res.Body, &sitemap); err != nil {
		return nil, err
	}

	found := newCrawl("", 0)
	for _, u := range sitemap.URLs {
		if IsSameDomain(u.Loc, domain) && IsExamDocument(u.Loc) {
			found.doc(u.Loc)
		}
	}
	return found.documents(), nil
}

// discoverFromLinks crawls same-domain HTML pages breadth first. Linked
// JSON documents are collected without being fetched; pages that embed an
// exam are collected themselves.
func discoverFromLinks(ctx context.Context, startURL string, domain string, fetcher core.Fetcher) ([]string, error) {
	c := newCrawl(startURL, MaxPages)
	log := core.Logger()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		currentURL, ok := c.next()
		if !ok {
			break
		}

		result, err := fetcher.Fetch(ctx, currentURL)
		if err != nil {
			log.Debug("skipping page", "url", currentURL, "error", err)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
		if err != nil {
			continue
		}
		if doc.FindMatcher(selEmbedded).Length() > 0 && c.doc(currentURL) {
			log.Debug("found embedded exam", "url", currentURL)
		}

		for _, link := range extractLinks(doc, currentURL) {
			if !IsSameDomain(link, domain) {
				continue
			}
			switch {
			case IsExamDocument(link):
				if c.doc(link) {
					log.Debug("found exam document", "url", link, "page", currentURL)
				}
			case !IsStaticAsset(link):
				c.page(link)
			}
		}
	}

	return c.documents(), nil
}

// extractLinks returns every href in doc, resolved against baseURL.
func extractLinks(doc *goquery.Document, baseURL string) []string {
	base, _ := url.Parse(baseURL)
	var links []string

	doc.FindMatcher(selLinks).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		if resolved := resolveURL(href, base); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
