package codeblocks

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"codegen_server/internal/types"
)

const (
	fence      = "```"
	pathMarker = "//"
)

// Segment is a slice of the model output that begins at a block header.
type Segment struct {
	Offset int    // byte offset of the header in the full text
	Text   string // header through the byte before the next header
}

// Extract parses every well-formed block of the form
//
//	```tsx // app/page.tsx
//	export default function Page() {}
//	```
//
// and returns one file per block in order of appearance. Segments that do not
// match are dropped. The result is never nil.
func Extract(text string) []types.GeneratedFile {
	files := []types.GeneratedFile{}
	for _, seg := range Split(text) {
		if f, ok := Match(seg.Text); ok {
			files = append(files, f)
		}
	}
	return files
}

// Split cuts text at every offset where a block header starts. Headers are
// recognised anywhere, not only at line starts, so a block whose closing
// fence was omitted still ends where the next header begins. Text before the
// first header is not returned.
func Split(text string) []Segment {
	var starts []int
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], fence)
		if j < 0 {
			break
		}
		at := i + j
		if _, _, ok := scanHeader(text, at); ok {
			starts = append(starts, at)
		}
		i = at + 1
	}

	segs := make([]Segment, 0, len(starts))
	for k, start := range starts {
		end := len(text)
		if k+1 < len(starts) {
			end = starts[k+1]
		}
		segs = append(segs, Segment{Offset: start, Text: text[start:end]})
	}
	return segs
}

type matchState int

const (
	seekHeader matchState = iota
	capturePath
	skipToBody
	captureBody
)

// Match reads one segment with a small state machine:
// seek-header -> capture-path -> skip-to-body -> capture-body-until-fence.
// It reports false when the segment has no header at offset 0, the path is
// followed by something other than whitespace and a newline, the closing
// fence is missing, or the body is empty.
func Match(segment string) (types.GeneratedFile, bool) {
	var (
		state     = seekHeader
		pathStart int
		pathEnd   int
		pos       int
	)
	for {
		switch state {
		case seekHeader:
			ps, pe, ok := scanHeader(segment, 0)
			if !ok {
				return types.GeneratedFile{}, false
			}
			pathStart, pathEnd = ps, pe
			state = capturePath

		case capturePath:
			if strings.TrimSpace(segment[pathStart:pathEnd]) == "" {
				return types.GeneratedFile{}, false
			}
			pos = pathEnd
			state = skipToBody

		case skipToBody:
			// The body starts after the last newline of the whitespace run
			// that follows the path.
			lastNL := -1
			i := pos
			for i < len(segment) {
				r, size := utf8.DecodeRuneInString(segment[i:])
				if !unicode.IsSpace(r) {
					break
				}
				if r == '\n' {
					lastNL = i
				}
				i += size
			}
			if lastNL < 0 {
				return types.GeneratedFile{}, false
			}
			pos = lastNL + 1
			state = captureBody

		case captureBody:
			end := strings.Index(segment[pos:], fence)
			if end <= 0 {
				// missing fence, or nothing between header and fence
				return types.GeneratedFile{}, false
			}
			return types.GeneratedFile{
				Name:    strings.TrimSpace(segment[pathStart:pathEnd]),
				Content: strings.TrimSpace(segment[pos : pos+end]),
			}, true
		}
	}
}

// scanHeader checks for `fence [lang] ws* // ws* path` at text[at:] and
// returns the byte range of the path.
func scanHeader(text string, at int) (pathStart, pathEnd int, ok bool) {
	if !strings.HasPrefix(text[at:], fence) {
		return 0, 0, false
	}
	i := at + len(fence)
	for i < len(text) && isLangByte(text[i]) {
		i++
	}
	i = skipSpace(text, i)
	if !strings.HasPrefix(text[i:], pathMarker) {
		return 0, 0, false
	}
	i = skipSpace(text, i+len(pathMarker))
	start := i
	for i < len(text) && isPathByte(text[i]) {
		i++
	}
	if i == start {
		return 0, 0, false
	}
	return start, i, true
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

func isLangByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func isPathByte(b byte) bool {
	return isLangByte(b) || b == '_' || b == '.' || b == '/' || b == '-'
}
