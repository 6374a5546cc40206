// Package chunker splits extracted document text into overlapping
// fixed-size segments suitable for embedding.
package chunker

import (
	"strings"
	"unicode"

	"sunbeaminfo.com/smart-assistant/internal/pdf"
)

// defaultTolerance is how far back from the hard size limit the
// splitter will look for a whitespace boundary before giving up and
// cutting mid-word.
const defaultTolerance = 120

// Segment is a chunk candidate: a bounded piece of page text with its
// provenance. It is not yet embedded and carries no identifier.
type Segment struct {
	Text    string
	Source  string
	Page    int
	Ordinal int
}

// Splitter produces segments of at most size runes, with consecutive
// segments from the same page sharing exactly overlap runes.
type Splitter struct {
	size      int
	overlap   int
	tolerance int
}

func New(size, overlap int) *Splitter {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	tolerance := defaultTolerance
	// The next segment must always start past the previous one.
	if tolerance >= size-overlap {
		tolerance = (size - overlap) / 2
	}
	return &Splitter{size: size, overlap: overlap, tolerance: tolerance}
}

// Split chunks every page of a document. Ordinals are assigned across
// the whole document in reading order. Overlap never crosses a page
// boundary.
func (s *Splitter) Split(pages []pdf.Page, source string) []Segment {
	var segments []Segment
	ordinal := 0
	for _, page := range pages {
		for _, text := range s.splitText(page.Text) {
			segments = append(segments, Segment{
				Text:    text,
				Source:  source,
				Page:    page.Number,
				Ordinal: ordinal,
			})
			ordinal++
		}
	}
	return segments
}

// splitText cuts a single page's text into overlapping windows. Each
// cut prefers the last whitespace within tolerance of the size limit;
// text with no such boundary is cut hard at the limit. A page shorter
// than the window yields exactly one segment.
func (s *Splitter) splitText(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.size {
		return []string{string(runes)}
	}

	var out []string
	start := 0
	for {
		end := start + s.size
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			return out
		}
		cut := end
		for j := end; j > end-s.tolerance; j-- {
			if unicode.IsSpace(runes[j-1]) {
				cut = j
				break
			}
		}
		out = append(out, string(runes[start:cut]))
		start = cut - s.overlap
	}
}
