package sitemap

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// StaticRoutes are the SPA pages listed before the per-anime pages.
var StaticRoutes = []Route{
	{Path: "/", ChangeFreq: "daily", Priority: 1.0},
	{Path: "/anime", ChangeFreq: "daily", Priority: 0.9},
	{Path: "/schedule", ChangeFreq: "daily", Priority: 0.8},
	{Path: "/community", ChangeFreq: "hourly", Priority: 0.7},
}

type Route struct {
	Path       string
	ChangeFreq string
	Priority   float64
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Build lists the static routes, then /anime/{id} and /watch/{id} for every id.
func Build(siteURL string, ids []int, now time.Time) *URLSet {
	base := strings.TrimRight(siteURL, "/")
	lastmod := now.UTC().Format("2006-01-02")
	set := &URLSet{Xmlns: xmlns, URLs: make([]URL, 0, len(StaticRoutes)+2*len(ids))}

	add := func(path, freq string, prio float64) {
		set.URLs = append(set.URLs, URL{
			Loc:        base + path,
			LastMod:    lastmod,
			ChangeFreq: freq,
			Priority:   strconv.FormatFloat(prio, 'f', 1, 64),
		})
	}
	for _, r := range StaticRoutes {
		add(r.Path, r.ChangeFreq, r.Priority)
	}
	for _, id := range ids {
		add("/anime/"+strconv.Itoa(id), "weekly", 0.8)
	}
	for _, id := range ids {
		add("/watch/"+strconv.Itoa(id), "weekly", 0.6)
	}
	return set
}

// Write encodes set as an indented XML document.
func Write(w io.Writer, set *URLSet) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
