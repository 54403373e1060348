package enrich

import (
	"strconv"
	"strings"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/platform/googlebooks"
)

var dateLayouts = []string{"2006-01-02", "2006-01"}

// ParseDate parses a metadata date string. A bare number is interpreted as
// a year and parses to YEAR-01-01. The second result is false when the
// string cannot be parsed.
func ParseDate(dateString string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, dateString, time.UTC); err == nil {
			return d, true
		}
	}
	if year, err := strconv.Atoi(strings.TrimSpace(dateString)); err == nil && year > 0 {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// MergeVolumes merges candidate metadata into b. Many candidates are
// incomplete, so each field independently takes the first candidate that
// has it populated. The published date instead takes the earliest parseable
// date across all candidates: editions and reprints carry later dates, so
// the earliest best approximates the original publication. Fields with no
// usable candidate value are left unchanged. Merging the same candidates
// twice yields the same result.
func MergeVolumes(b *book.Book, infos []googlebooks.VolumeInfo) {
	for _, info := range infos {
		if info.Title != "" {
			b.Title = info.Title
			break
		}
	}

	var earliest *time.Time
	for _, info := range infos {
		if info.PublishedDate == "" {
			continue
		}
		d, ok := ParseDate(info.PublishedDate)
		if !ok {
			continue
		}
		if earliest == nil || d.Before(*earliest) {
			earliest = &d
		}
	}
	if earliest != nil {
		b.PublishedDate = earliest
	}

	for _, info := range infos {
		if len(info.Authors) > 0 {
			b.Author = strings.Join(info.Authors, ", ")
			break
		}
	}

	for _, info := range infos {
		if info.Description != "" {
			b.Description = info.Description
			break
		}
	}

	for _, info := range infos {
		if info.ImageLinks.Thumbnail != "" {
			b.ImageURL = info.ImageLinks.Thumbnail
			break
		}
	}
}
