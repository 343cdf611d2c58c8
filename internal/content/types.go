// Package content parses frontmatter-bearing source files into typed records
// (pages, posts, user data pages) and plain data files, validating required
// fields and computing derived ones.
package content

import (
	"strconv"
	"time"
)

// Page is a standalone content unit. User frontmatter keys live in Extra;
// identity fields are written into the render context after the extras, so
// user keys can never shadow them.
type Page struct {
	Template   string
	Name       string
	Content    string
	SourceFile string

	// Permalink is the normalized permalink, or empty when the page falls
	// back to its filename-derived output path. Only regular pages may
	// declare one.
	Permalink string

	// URL is set for user data pages only: `<category>/<name>`.
	URL string

	Extra map[string]any
}

// Context returns the merged template namespace for the page.
func (p *Page) Context() map[string]any {
	ctx := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		ctx[k] = v
	}
	ctx["template"] = p.Template
	ctx["name"] = p.Name
	ctx["content"] = p.Content
	ctx["source_file"] = p.SourceFile
	if p.URL != "" {
		ctx["url"] = p.URL
	}
	return ctx
}

// DateInfo is the date namespace exposed to post authors.
type DateInfo struct {
	Year           string
	Month          string
	MonthPadded    string
	MonthName      string
	MonthNameShort string
	Day            string
	DayPadded      string
	DayName        string
	DayNameShort   string
	Timestamp      int64
}

func newDateInfo(t time.Time) DateInfo {
	return DateInfo{
		Year:           t.Format("2006"),
		Month:          strconv.Itoa(int(t.Month())),
		MonthPadded:    t.Format("01"),
		MonthName:      t.Format("January"),
		MonthNameShort: t.Format("Jan"),
		Day:            strconv.Itoa(t.Day()),
		DayPadded:      t.Format("02"),
		DayName:        t.Format("Monday"),
		DayNameShort:   t.Format("Mon"),
		Timestamp:      t.Unix(),
	}
}

// Context returns the date namespace as exposed to templates.
func (d DateInfo) Context() map[string]any {
	return map[string]any{
		"year":             d.Year,
		"month":            d.Month,
		"month_padded":     d.MonthPadded,
		"month_name":       d.MonthName,
		"month_name_short": d.MonthNameShort,
		"day":              d.Day,
		"day_padded":       d.DayPadded,
		"day_name":         d.DayName,
		"day_name_short":   d.DayNameShort,
		"timestamp":        d.Timestamp,
	}
}

// Post is a page with mandatory temporal identity. Its position on the site
// is determined by its date: `/YYYY/MM/DD/<name>`.
type Post struct {
	Template   string
	Title      string
	Name       string
	Content    string
	SourceFile string

	Date       DateInfo
	Categories []string
	Tags       []string

	// BaseAddress is the `YYYY/MM/DD` output path segment; URL is the
	// absolute `/YYYY/MM/DD/<name>` path.
	BaseAddress string
	URL         string

	// IsDraft reflects filesystem origin (the drafts directory), never a
	// frontmatter flag.
	IsDraft bool

	Extra map[string]any
}

// Context returns the merged template namespace for the post.
func (p *Post) Context() map[string]any {
	ctx := make(map[string]any, len(p.Extra)+11)
	for k, v := range p.Extra {
		ctx[k] = v
	}
	ctx["template"] = p.Template
	ctx["title"] = p.Title
	ctx["name"] = p.Name
	ctx["content"] = p.Content
	ctx["source_file"] = p.SourceFile
	ctx["date"] = p.Date.Context()
	ctx["categories"] = p.Categories
	ctx["tags"] = p.Tags
	ctx["base_address"] = p.BaseAddress
	ctx["url"] = p.URL
	ctx["is_draft"] = p.IsDraft
	return ctx
}
