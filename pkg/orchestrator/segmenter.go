package orchestrator

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const defaultSegmentMaxChars = 180

// sentenceTerminators are the punctuation runes that close a speakable
// segment. CJK full-width punctuation is included since Language spans
// Japanese/Chinese (§Language enum).
var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, // CJK full stop 。
	'！': true, // CJK exclamation ！
	'？': true, // CJK question ？
}

// Segmenter splits a stream of incoming LLM token fragments into speakable
// segments, flushing on a sentence-terminating rune, a hard character
// bound, or explicit end-of-stream. Each flushed segment gets a
// monotonically increasing index starting at 0, scoped to one Segmenter
// instance (callers construct a fresh one per turn).
type Segmenter struct {
	maxChars int
	buf      strings.Builder
	nextIdx  int

	// pendingTerm marks a terminator rune was just buffered with no
	// lookahead rune yet available in the same Feed call to decide
	// whether it closes a sentence (e.g. "3." split across fragments) or
	// is mid-abbreviation/decimal (e.g. "3.14"). Resolved by the first
	// rune of the next Feed call, or by End() at true end-of-stream.
	pendingTerm bool
}

func NewSegmenter(maxChars int) *Segmenter {
	if maxChars <= 0 {
		maxChars = defaultSegmentMaxChars
	}
	return &Segmenter{maxChars: maxChars}
}

// Segment describes one flushed chunk of text ready for TTS.
type Segment struct {
	Index int
	Text  string
	// Final marks the last segment of the turn (flushed by EOS, not by a
	// terminator or the hard bound).
	Final bool
}

// Feed appends a token fragment and returns zero or more segments ready to
// flush. A fragment may complete more than one sentence (rare, but possible
// with fast LLM streaming chunking), so callers must consume the whole
// returned slice in order.
func (s *Segmenter) Feed(fragment string) []Segment {
	var out []Segment
	runes := []rune(fragment)
	for i, r := range runes {
		if s.pendingTerm {
			s.pendingTerm = false
			if unicode.IsSpace(r) {
				if seg, ok := s.flush(false); ok {
					out = append(out, seg)
				}
			}
		}

		s.buf.WriteRune(r)
		if sentenceTerminators[r] {
			// Only a terminator followed by whitespace (or end-of-stream,
			// handled by End()) closes the segment, so "3.14" does not split
			// mid-number; "Mr. Smith" does split after "Mr.".
			switch {
			case i == len(runes)-1:
				s.pendingTerm = true
			case unicode.IsSpace(runes[i+1]):
				if seg, ok := s.flush(false); ok {
					out = append(out, seg)
				}
			}
			continue
		}
		if utf8.RuneCountInString(s.buf.String()) >= s.maxChars {
			if seg, ok := s.flush(false); ok {
				out = append(out, seg)
			}
		}
	}
	return out
}

// End flushes any buffered trailing text as the final segment. Call once
// after the LLM stream reports isComplete=true.
func (s *Segmenter) End() (Segment, bool) {
	return s.flush(true)
}

func (s *Segmenter) flush(final bool) (Segment, bool) {
	text := strings.TrimSpace(s.buf.String())
	s.buf.Reset()
	if text == "" {
		return Segment{}, false
	}
	seg := Segment{Index: s.nextIdx, Text: text, Final: final}
	s.nextIdx++
	return seg, true
}
