package chunker

import (
	"sort"
	"strings"
)

// Reassemble rebuilds source text from chunks of a single source. Chunks are
// ordered by Start and only the part of each chunk past the end of the text
// already written is appended, so overlaps are not duplicated. A gap between
// chunks (missing chunk) is left as-is; the surrounding text is still joined.
func Reassemble(chunks []Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	ordered := make([]Chunk, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	var b strings.Builder
	written := ordered[0].Start
	for _, c := range ordered {
		runes := []rune(c.Content)
		if c.End <= written {
			continue
		}
		skip := written - c.Start
		if skip < 0 {
			skip = 0
		}
		if skip > len(runes) {
			continue
		}
		b.WriteString(string(runes[skip:]))
		written = c.Start + len(runes)
	}

	return b.String()
}
