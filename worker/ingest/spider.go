package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"newsVoice/worker/pipeline"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	excludeLinkExpr = regexp.MustCompile(`(?i)^#|^javascript:|^mailto:|^/$|/tag/|/category/|/author/|/search`)
	articleLinkExpr = regexp.MustCompile(`(?i)/article/|/news/|/story/|/\d{4}/\d{2}/|/[a-z]+-[a-z]+`)
)

var titleSelectors = []string{
	"h1",
	"article h1",
	".article-title",
	".post-title",
	".entry-title",
	`[itemprop="headline"]`,
}

var contentSelectors = []string{
	"article",
	".article-body",
	".post-content",
	".entry-content",
	`[itemprop="articleBody"]`,
	"main",
}

var timeSelectors = []string{
	"time[datetime]",
	"time",
	`[itemprop="datePublished"]`,
	".publish-date",
	".post-date",
}

var authorSelectors = []string{
	`[itemprop="author"]`,
	".author",
	".by-author",
	".post-author",
}

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
}

// Spider is a generic news-site ingestor: it scans the submitted page
// for article links, fetches each one and extracts title, body text and
// metadata. It works for most conventionally structured news sites.
type Spider struct {
	client *http.Client
	logger *zap.Logger
}

var _ pipeline.Ingestor = (*Spider)(nil)

func NewSpider(client *http.Client, logger *zap.Logger) *Spider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Spider{client: client, logger: logger}
}

func (s *Spider) Ingest(ctx context.Context, pageURL string, max int) ([]pipeline.IngestedArticle, error) {
	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	links := s.collectArticleLinks(doc, pageURL, max)

	// The submitted page may itself be an article rather than an index.
	if len(links) == 0 {
		article, ok := s.extractArticle(doc, pageURL)
		if !ok {
			return nil, nil
		}
		return []pipeline.IngestedArticle{article}, nil
	}

	articles := make([]pipeline.IngestedArticle, 0, len(links))
	for _, link := range links {
		articleDoc, err := s.fetchDocument(ctx, link)
		if err != nil {
			s.logger.Warn("Failed to fetch article page",
				zap.String("url", link), zap.Error(err))
			continue
		}
		if article, ok := s.extractArticle(articleDoc, link); ok {
			articles = append(articles, article)
		}
		if len(articles) >= max {
			break
		}
	}

	return articles, nil
}

func (s *Spider) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

func (s *Spider) collectArticleLinks(doc *goquery.Document, baseURL string, max int) []string {
	links := make([]string, 0, max)
	seen := map[string]struct{}{}

	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())
		if !isArticleLink(href, text) {
			return true
		}

		full := normalizeURL(href, baseURL)
		if full == "" || full == baseURL {
			return true
		}
		if _, ok := seen[full]; ok {
			return true
		}
		seen[full] = struct{}{}
		links = append(links, full)
		return len(links) < max
	})

	return links
}

func isArticleLink(href, text string) bool {
	if href == "" || excludeLinkExpr.MatchString(href) {
		return false
	}
	if articleLinkExpr.MatchString(href) {
		return true
	}

	lower := strings.ToLower(href)
	for _, nav := range []string{"home", "about", "contact"} {
		if strings.Contains(lower, nav) {
			return false
		}
	}
	return len(text) > 20
}

func normalizeURL(href, baseURL string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return ""
		}
		return parsed.Scheme + "://" + parsed.Host + href
	default:
		return strings.TrimRight(baseURL, "/") + "/" + href
	}
}

func (s *Spider) extractArticle(doc *goquery.Document, articleURL string) (pipeline.IngestedArticle, bool) {
	article := pipeline.IngestedArticle{URL: articleURL}

	for _, selector := range titleSelectors {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if len(title) > 10 {
			article.Title = title
			break
		}
	}
	if article.Title == "" {
		article.Title = "Untitled"
	}

	for _, selector := range contentSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		content := collectParagraphs(container)
		if len(content) > 100 {
			article.Content = content
			break
		}
	}
	if article.Content == "" {
		article.Content = collectParagraphs(doc.Selection)
	}
	if article.Content == "" {
		return article, false
	}

	for _, selector := range timeSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		raw, ok := sel.Attr("datetime")
		if !ok {
			raw = strings.TrimSpace(sel.Text())
		}
		if ts := parseDate(raw); ts != nil {
			article.PublishTime = ts
			break
		}
	}

	for _, selector := range authorSelectors {
		if author := strings.TrimSpace(doc.Find(selector).First().Text()); author != "" {
			article.Author = author
			break
		}
	}

	return article, true
}

func collectParagraphs(sel *goquery.Selection) string {
	var parts []string
	sel.Find("p").Each(func(i int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, format := range dateFormats {
		if ts, err := time.Parse(format, raw); err == nil {
			return &ts
		}
	}
	return nil
}
