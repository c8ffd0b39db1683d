// Package cardtext parses printed card effect text into ability trees.
//
// The pipeline is Normalize → ability split → action-tree build. Every stage
// works on canonical text, so the grammar rules never have to allow for
// full-width/half-width variants, reminder parentheticals, or stray
// whitespace.
package cardtext

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	parenthetical = regexp.MustCompile(`\([^()]*\)`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// punctReplacer maps bracket and sign variants NFKC leaves alone onto the
// single form the grammar rules expect.
var punctReplacer = strings.NewReplacer(
	"[", "『", "]", "』",
	"【", "『", "】", "』",
	"<", "《", ">", "》",
	"−", "-", "‒", "-", "–", "-", "—", "-", "―", "-",
	"➕", "+",
)

// Normalize canonicalizes raw card text: circled-digit cost markers expand to
// their spelled-out phrase, the text is NFKC-folded, reminder parentheticals
// are stripped, bracket and sign variants unify, whitespace disappears, and
// the resource token name loses its "!!" suffix.
//
// Normalize is idempotent: applying it to its own output changes nothing.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = expandCircledDigits(text)
	// NFKC first: it folds full-width ASCII so one parenthesis/colon/slash
	// form survives into the later rules.
	text = norm.NFKC.String(text)
	// The pattern matches innermost pairs only; loop so nested reminder
	// text is removed in one call.
	for {
		stripped := parenthetical.ReplaceAllString(text, "")
		if stripped == text {
			break
		}
		text = stripped
	}
	text = punctReplacer.Replace(text)
	text = whitespace.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "ドン!!", "ドン")
	text = strings.ReplaceAll(text, "DON!!", "ドン")
	return text
}

// expandCircledDigits rewrites ①..⑳ as the spelled-out optional rest cost
// before NFKC folding would collapse them into bare digits.
func expandCircledDigits(text string) string {
	if !strings.ContainsFunc(text, func(r rune) bool { return r >= '①' && r <= '⑳' }) {
		return text
	}
	var b strings.Builder
	for _, r := range text {
		if r >= '①' && r <= '⑳' {
			fmt.Fprintf(&b, "ドン%d枚をレストにできる", int(r-'①')+1)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
