// Package sourcemap builds the inline source map spec.md §4.L/§6.5 appends
// to emitted output. It is a much smaller sibling of the teacher's
// internal/sourcemap (which merges source maps across a whole bundle's
// worth of already-mapped input files): funee's declarations come from a
// from-scratch parser with no token-position tracking (see
// internal/js_parser), so the map this package produces is file-granular —
// the first generated line of each node's emitted statement maps to line 1
// of that node's source file, and its other lines carry no mapping —
// rather than token-accurate. That's enough to satisfy
// the emitted-code contract (a debugger can still jump to the right file)
// without carrying position spans through every AST node.
package sourcemap

import (
	"encoding/base64"
	"fmt"
	"strings"
)

type Mapping struct {
	GeneratedLine int // 0-based
	SourceIndex   int
	SourceLine    int // 0-based
}

type Builder struct {
	sources  []string
	sourceIx map[string]int
	mappings []Mapping
}

func NewBuilder() *Builder {
	return &Builder{sourceIx: make(map[string]int)}
}

func (b *Builder) sourceIndex(uri string) int {
	if ix, ok := b.sourceIx[uri]; ok {
		return ix
	}
	ix := len(b.sources)
	b.sources = append(b.sources, uri)
	b.sourceIx[uri] = ix
	return ix
}

// AddLine records that generated output line `generatedLine` (0-based)
// originates from line 0 of `sourceURI`.
func (b *Builder) AddLine(generatedLine int, sourceURI string) {
	b.mappings = append(b.mappings, Mapping{
		GeneratedLine: generatedLine,
		SourceIndex:   b.sourceIndex(sourceURI),
		SourceLine:    0,
	})
}

// VLQ-encodes a signed integer the way the source map v3 spec requires:
// sign in the low bit, continuation in the high bit of each base64 digit.
const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func encodeVLQ(sb *strings.Builder, value int) {
	v := value << 1
	if value < 0 {
		v = (-value << 1) | 1
	}
	for {
		digit := v & 0x1f
		v >>= 5
		if v > 0 {
			digit |= 0x20
		}
		sb.WriteByte(base64Chars[digit])
		if v == 0 {
			break
		}
	}
}

// buildMappings renders the "mappings" field of a source map v3 document.
// Each recorded mapping becomes one segment at generated-column 0; lines
// with no recorded mapping get no segment.
func (b *Builder) buildMappings() string {
	var sb strings.Builder
	prevGeneratedLine := 0
	prevSourceIndex := 0
	prevSourceLine := 0
	for i, m := range b.mappings {
		for prevGeneratedLine < m.GeneratedLine {
			sb.WriteByte(';')
			prevGeneratedLine++
		}
		if i > 0 && b.mappings[i-1].GeneratedLine == m.GeneratedLine {
			sb.WriteByte(',')
		}
		encodeVLQ(&sb, 0) // generated column, always 0
		encodeVLQ(&sb, m.SourceIndex-prevSourceIndex)
		encodeVLQ(&sb, m.SourceLine-prevSourceLine)
		encodeVLQ(&sb, 0) // source column, always 0
		prevSourceIndex = m.SourceIndex
		prevSourceLine = m.SourceLine
	}
	return sb.String()
}

// InlineComment renders the full "//# sourceMappingURL=data:..." comment
// appended to emitted output per spec.md §6.5.
func (b *Builder) InlineComment() string {
	var sources strings.Builder
	sources.WriteByte('[')
	for i, s := range b.sources {
		if i > 0 {
			sources.WriteByte(',')
		}
		fmt.Fprintf(&sources, "%q", s)
	}
	sources.WriteByte(']')

	doc := fmt.Sprintf(
		`{"version":3,"sources":%s,"names":[],"mappings":%q}`,
		sources.String(), b.buildMappings(),
	)
	encoded := base64.StdEncoding.EncodeToString([]byte(doc))
	return "//# sourceMappingURL=data:application/json;base64," + encoded + "\n"
}
