package content

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/flora-ssg/flora/internal/errors"
	"github.com/flora-ssg/flora/internal/util/literal"
)

// postDateLayout is the fixed format for an explicit frontmatter date:
// date, time of day, and UTC offset.
const postDateLayout = "2006-01-02 15:04:05 -0700"

// Posts collects the posts of the project, plus the drafts when
// includeDrafts is true, sorted newest first.
func (c *Collector) Posts(includeDrafts bool) ([]*Post, error) {
	files, err := c.layout.PostFiles()
	if err != nil {
		return nil, err
	}

	fromDrafts := map[string]bool{}
	if includeDrafts {
		draftFiles, err := c.layout.DraftFiles()
		if err != nil {
			return nil, err
		}
		for _, f := range draftFiles {
			fromDrafts[f] = true
		}
		files = append(files, draftFiles...)
	}

	posts := make([]*Post, 0, len(files))
	for _, file := range files {
		slog.Debug("Collecting post", "path", file)
		post, err := c.collectPost(file, fromDrafts[file])
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.Timestamp > posts[j].Date.Timestamp
	})
	return posts, nil
}

func (c *Collector) collectPost(file string, isDraft bool) (*Post, error) {
	fields, body, err := parseFrontmatterFile(file)
	if err != nil {
		return nil, err
	}

	template, err := requireString(fields, "template", file)
	if err != nil {
		return nil, err
	}
	title, err := requireString(fields, "title", file)
	if err != nil {
		return nil, err
	}
	categories, err := stringList(fields, "categories", "category", file)
	if err != nil {
		return nil, err
	}
	tags, err := stringList(fields, "tags", "tag", file)
	if err != nil {
		return nil, err
	}

	_, stem, _ := splitPathElements(file)
	parts := strings.Split(stem, "-")
	if len(parts) < 4 {
		return nil, errors.WrongTypeOrFormat(
			"%s: Post files should be of the form 'YYYY-MM-DD-post-title-here'.", file,
		)
	}
	fnYear, fnMonth, fnDay := parts[0], parts[1], parts[2]
	name := strings.Join(parts[3:], "-")
	baseAddress := fnYear + "/" + fnMonth + "/" + fnDay

	dateString := fmt.Sprintf("%s-%s-%s 00:00:00 +0000", fnYear, fnMonth, fnDay)
	if raw, ok := fields["date"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.WrongTypeOrFormat(
				"%s: Expected type 'string' but got '%s' for key 'date'.",
				file, literal.TypeName(raw),
			)
		}
		dateString = s
	}

	parsed, err := time.Parse(postDateLayout, dateString)
	if err != nil {
		return nil, errors.WrongTypeOrFormat(
			"%s: Invalid date '%s'; expected format 'YYYY-MM-DD HH:MM:SS +ZZZZ'.",
			file, dateString,
		)
	}
	date := newDateInfo(parsed)

	// The filename date and the frontmatter date must agree; a mismatch
	// means a misfiled post, never a silent override.
	if fnYear != date.Year {
		return nil, errors.WrongTypeOrFormat(
			"%s: Year mismatch; '%s' in the filename, but '%s' in the file.",
			file, fnYear, date.Year,
		)
	}
	if fnMonth != date.MonthPadded {
		return nil, errors.WrongTypeOrFormat(
			"%s: Month mismatch; '%s' in the filename, but '%s' in the file.",
			file, fnMonth, date.MonthPadded,
		)
	}
	if fnDay != date.DayPadded {
		return nil, errors.WrongTypeOrFormat(
			"%s: Day mismatch; '%s' in the filename, but '%s' in the file.",
			file, fnDay, date.DayPadded,
		)
	}

	return &Post{
		Template:    template,
		Title:       title,
		Name:        name,
		Content:     body,
		SourceFile:  file,
		Date:        date,
		Categories:  categories,
		Tags:        tags,
		BaseAddress: baseAddress,
		URL:         "/" + baseAddress + "/" + name,
		IsDraft:     isDraft,
		Extra:       fields,
	}, nil
}
