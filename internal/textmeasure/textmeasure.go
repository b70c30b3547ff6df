// Package textmeasure provides display-column-aware text measurement,
// wrapping, and truncation shared by the coordinate assigner (node intrinsic
// sizing) and the label placer (wrapping and legend entries). Wide
// characters count as two columns throughout; rune count is never used as
// a width proxy.
package textmeasure

import "github.com/mattn/go-runewidth"

// Width returns the display-column width of s, wide characters counting 2.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to fit within width display columns, appending a
// single-column ellipsis if truncation occurred; one column is reserved
// for the ellipsis itself.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if Width(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return runewidth.Truncate(s, width-1, "") + "…"
}

// WrapLines wraps s into lines of at most maxWidth display columns each,
// breaking on spaces where possible and falling back to a hard break
// mid-word when a single word exceeds maxWidth. Truncates to maxLines,
// replacing the final visible line's tail with an ellipsis when content
// was dropped.
func WrapLines(s string, maxWidth, maxLines int) []string {
	if maxWidth <= 0 {
		maxWidth = 1
	}
	words := splitWords(s)
	var lines []string
	var cur []rune
	curWidth := 0

	flush := func() {
		lines = append(lines, string(cur))
		cur = cur[:0]
		curWidth = 0
	}

	for _, w := range words {
		ww := Width(string(w))
		if ww > maxWidth {
			// Hard-break the oversized word across as many lines as needed.
			if curWidth > 0 {
				flush()
			}
			for _, r := range hardBreak(w, maxWidth) {
				cur = []rune(r)
				curWidth = Width(r)
				flush()
			}
			continue
		}
		sep := 0
		if curWidth > 0 {
			sep = 1
		}
		if curWidth+sep+ww > maxWidth {
			flush()
			cur = append(cur, w...)
			curWidth = ww
			continue
		}
		if curWidth > 0 {
			cur = append(cur, ' ')
			curWidth++
		}
		cur = append(cur, w...)
		curWidth += ww
	}
	if curWidth > 0 || len(lines) == 0 {
		flush()
	}

	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		last := lines[maxLines-1]
		if Width(last) < maxWidth {
			lines[maxLines-1] = last + "…"
		} else {
			lines[maxLines-1] = Truncate(last+"…", maxWidth)
		}
	}
	return lines
}

func splitWords(s string) [][]rune {
	var words [][]rune
	var cur []rune
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			if len(cur) > 0 {
				words = append(words, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		words = append(words, cur)
	}
	return words
}

func hardBreak(word []rune, maxWidth int) []string {
	var out []string
	var cur []rune
	curWidth := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if curWidth+rw > maxWidth && curWidth > 0 {
			out = append(out, string(cur))
			cur = nil
			curWidth = 0
		}
		cur = append(cur, r)
		curWidth += rw
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

// MaxLineWidth returns the widest display-column width among lines.
func MaxLineWidth(lines []string) int {
	max := 0
	for _, l := range lines {
		if w := Width(l); w > max {
			max = w
		}
	}
	return max
}
