package naver

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const dateLayout = "2006-01-02 15:04:05"

// Article pages carry local Korean time without an offset.
var kst = time.FixedZone("KST", 9*60*60)

var whitespace = regexp.MustCompile(`\s+`)

// page holds the fields scraped from an article page.
type page struct {
	Title       string
	PublishedAt *time.Time
	Author      string
	Body        string
}

// empty reports whether the page has neither a title nor a body, which is
// how the site renders removed or never-published ids.
func (p *page) empty() bool {
	return p.Title == "" && p.Body == ""
}

func parseArticlePage(r io.Reader) (*page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	p := &page{
		Title:  cleanText(doc.Find("h2#title_area").First().Text()),
		Author: cleanText(doc.Find("em.media_end_head_journalist_name").First().Text()),
		Body:   cleanText(doc.Find("article#dic_area").First().Text()),
	}

	date := doc.Find("span.media_end_head_info_datestamp_time._ARTICLE_DATE_TIME").First()
	if date.Length() == 0 {
		date = doc.Find("span.media_end_head_info_datestamp_time").First()
	}
	if raw, ok := date.Attr("data-date-time"); ok {
		p.PublishedAt = parseDate(raw)
	}
	return p, nil
}

// parseDate returns nil when raw is not a recognisable timestamp.
func parseDate(raw string) *time.Time {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), kst)
	if err != nil {
		return nil
	}
	return &t
}

func cleanText(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
