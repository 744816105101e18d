package classify

import "sift/internal/sweep"

// ScanParens finds every literal parenthesis outside all structures.
// An opening paren is recorded at its own offset, a closing paren at the
// offset just past it, so "()" is closed for any query at its end.
// The structure sweep is consumed up to the last parenthesis.
func ScanParens(text string, structure *sweep.Sweep) []sweep.Delimiter {
	var delims []sweep.Delimiter
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '(' && c != ')' {
			continue
		}
		if structure.To(i) != 0 {
			continue
		}
		if c == '(' {
			delims = append(delims, sweep.Delimiter{Pos: i, Opening: true})
		} else {
			delims = append(delims, sweep.Delimiter{Pos: i + 1, Opening: false})
		}
	}
	return delims
}

// BalanceParens drops closing parens that close nothing, then opening
// parens that are never closed. The input must be in ascending order and
// the result keeps that order.
func BalanceParens(delims []sweep.Delimiter, r Reporter) []sweep.Delimiter {
	if r == nil {
		r = Discard
	}

	open := 0
	forward := make([]sweep.Delimiter, 0, len(delims))
	for _, d := range delims {
		switch {
		case d.Opening:
			open++
			forward = append(forward, d)
		case open > 0:
			open--
			forward = append(forward, d)
		default:
			r.OrphanClosingParen(d.Pos)
		}
	}

	closed := 0
	backward := make([]sweep.Delimiter, 0, len(forward))
	for i := len(forward) - 1; i >= 0; i-- {
		d := forward[i]
		switch {
		case !d.Opening:
			closed++
			backward = append(backward, d)
		case closed > 0:
			closed--
			backward = append(backward, d)
		default:
			r.OrphanOpeningParen(d.Pos)
		}
	}
	for i, j := 0, len(backward)-1; i < j; i, j = i+1, j-1 {
		backward[i], backward[j] = backward[j], backward[i]
	}
	return backward
}
