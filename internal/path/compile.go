package path

import (
	"strconv"
	"strings"

	engerrors "github.com/vishalvchavan/streamsmt/pkg/errors"
)

// compileText parses path text per spec §6.1 into an ordered segment list.
// The optional root marker "$." is stripped first. Segments are matched
// left to right, greedily: a run of word characters forms a field
// segment, and any number of bracketed index/wildcard/filter expressions
// may follow it directly (no separating dot); a dot introduces the next
// field segment.
func compileText(text string) ([]Segment, error) {
	s := strings.TrimPrefix(text, "$.")

	var segments []Segment
	i := 0
	n := len(s)

	for i < n {
		if s[i] == '.' {
			i++
			continue
		}

		if s[i] == '[' {
			seg, next, err := parseBracket(s, i)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
			i = next
			continue
		}

		start := i
		for i < n && isWordChar(s[i]) {
			i++
		}
		if i == start {
			return nil, engerrors.New(engerrors.EInvalid, "path %q: unexpected character %q at position %d", text, string(s[start]), start)
		}
		segments = append(segments, Segment{Kind: Field, Field: s[start:i]})
	}

	if len(segments) == 0 {
		return nil, engerrors.New(engerrors.EInvalid, "path %q: must contain at least one segment", text)
	}

	return segments, nil
}

func isWordChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// parseBracket parses a single "[...]" expression starting at i (which
// must index the '[') and returns the resulting segment and the index just
// past the closing ']'.
func parseBracket(s string, i int) (Segment, int, error) {
	closeIdx := strings.IndexByte(s[i:], ']')
	if closeIdx < 0 {
		return Segment{}, 0, engerrors.New(engerrors.EInvalid, "path %q: unterminated '[' starting at position %d", s, i)
	}
	closeIdx += i
	inner := s[i+1 : closeIdx]
	next := closeIdx + 1

	switch {
	case inner == "*":
		return Segment{Kind: Wildcard}, next, nil
	case strings.HasPrefix(inner, "?("):
		seg, err := parsePredicate(s, inner)
		return seg, next, err
	default:
		idx, err := strconv.Atoi(inner)
		if err != nil {
			return Segment{}, 0, engerrors.New(engerrors.EInvalid, "path %q: invalid bracket expression %q", s, inner)
		}
		if idx < 0 {
			return Segment{}, 0, engerrors.New(engerrors.EInvalid, "path %q: negative index %q is not allowed", s, inner)
		}
		return Segment{Kind: Index, Index: idx}, next, nil
	}
}

// parsePredicate parses "?(@.FIELD == LITERAL (&& @.FIELD == LITERAL)?)".
func parsePredicate(fullPath, inner string) (Segment, error) {
	body := strings.TrimPrefix(inner, "?(")
	body = strings.TrimSuffix(body, ")")

	clauses := strings.Split(body, "&&")
	if len(clauses) == 0 || len(clauses) > 2 {
		return Segment{}, engerrors.New(engerrors.EInvalid, "path %q: filter must contain one or two predicates", fullPath)
	}

	predicates := make([]Predicate, 0, len(clauses))
	for _, clause := range clauses {
		pred, err := parseClause(fullPath, strings.TrimSpace(clause))
		if err != nil {
			return Segment{}, err
		}
		predicates = append(predicates, pred)
	}

	return Segment{Kind: Filter, Predicates: predicates}, nil
}

func parseClause(fullPath, clause string) (Predicate, error) {
	parts := strings.SplitN(clause, "==", 2)
	if len(parts) != 2 {
		return Predicate{}, engerrors.New(engerrors.EInvalid, "path %q: filter predicate %q must be 'field == literal'", fullPath, clause)
	}

	field := strings.TrimSpace(parts[0])
	field = strings.TrimPrefix(field, "@.")

	literal := strings.TrimSpace(parts[1])
	if len(literal) >= 2 && literal[0] == '\'' && literal[len(literal)-1] == '\'' {
		literal = literal[1 : len(literal)-1]
	}

	if field == "" {
		return Predicate{}, engerrors.New(engerrors.EInvalid, "path %q: filter predicate %q is missing a field", fullPath, clause)
	}

	return Predicate{Field: field, Literal: literal}, nil
}
