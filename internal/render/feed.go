package render

import (
	"encoding/xml"
	"strings"
	"time"

	"git.home.luguber.info/inful/sssg/internal/site"
)

// RSS 2.0 feed of the most recent posts. No build timestamp is embedded so
// rebuilding unchanged content produces byte-identical output.

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description,omitempty"`
}

func (g *Generator) writeFeed(s *site.Site) error {
	limit := g.feedLimit
	if limit <= 0 || limit > len(s.Documents) {
		limit = len(s.Documents)
	}

	items := make([]rssItem, 0, limit)
	for _, d := range s.Documents[:limit] {
		link := absoluteURL(s.BaseURL, s.PageURL(d))
		items = append(items, rssItem{
			Title:       d.Title,
			Link:        link,
			GUID:        link,
			PubDate:     d.Date.Format(time.RFC1123Z),
			Description: d.Summary,
		})
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       s.Title,
			Link:        s.BaseURL,
			Description: s.Description,
			Items:       items,
		},
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return &WriteError{Path: "feed.xml", Err: err}
	}
	data := append([]byte(xml.Header), out...)
	data = append(data, '\n')
	return g.writeOutputFile("feed.xml", data)
}

func absoluteURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + path
}
