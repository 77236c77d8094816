package transform

import (
	"strings"
	"sync"
	"time"

	"github.com/vishalvchavan/streamsmt/internal/events"
	"github.com/vishalvchavan/streamsmt/internal/tree"
)

const defaultTimezone = "UTC"

// layoutCache and locationCache are the process-wide, concurrent
// date-formatter caches of spec §5: translated Go time layouts and loaded
// *time.Location values are pure functions of stable text keys (the Java
// pattern, the IANA zone name), so they are safe to memoize for the life
// of the process.
var (
	layoutCache   sync.Map // map[string]string
	locationCache sync.Map // map[string]*time.Location
)

func translatedLayout(pattern string) string {
	if v, ok := layoutCache.Load(pattern); ok {
		return v.(string)
	}
	layout := translateJavaPattern(pattern)
	actual, _ := layoutCache.LoadOrStore(pattern, layout)
	return actual.(string)
}

func resolveLocation(tz string) *time.Location {
	if tz == "" {
		tz = defaultTimezone
	}
	if v, ok := locationCache.Load(tz); ok {
		return v.(*time.Location)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	actual, _ := locationCache.LoadOrStore(tz, loc)
	return actual.(*time.Location)
}

// applyDateFormat implements spec §4.3 "dateFormat": null stays null,
// arrays recurse element-wise, a non-textual value becomes null, and
// otherwise each inputFormats entry is tried in order until one parses;
// the first success is rendered via outputFormat. No match emits null
// with a transform-soft-failure event.
func applyDateFormat(d Descriptor, val tree.Node, fieldName string, sink events.Sink, onSoftFailure func(kind Kind)) tree.Node {
	switch val.Kind() {
	case tree.KindMissing, tree.KindNull:
		return val
	case tree.KindArray:
		elems := val.ArrayValue()
		out := make([]tree.Node, len(elems))
		for i, el := range elems {
			out[i] = applyDateFormat(d, el, fieldName, sink, onSoftFailure)
		}
		return tree.Array(out)
	case tree.KindText:
		// fall through below
	default:
		return softFail(sink, onSoftFailure, fieldName, DateFormat, "dateFormat applied to a non-textual value")
	}

	text := val.TextValue()
	tz := d.Timezone
	if tz == "" {
		tz = defaultTimezone
	}

	for _, pattern := range d.InputFormats {
		if t, ok := tryParse(pattern, text, tz); ok {
			outLayout := translatedLayout(d.OutputFormat)
			return tree.Text(t.Format(outLayout))
		}
	}

	return softFail(sink, onSoftFailure, fieldName, DateFormat,
		"value %q did not match any of %d configured inputFormats", text, len(d.InputFormats))
}

// tryParse attempts pattern against value, first as an instant (only when
// the layout itself carries zone/offset information) and then, always, as
// a calendar value resolved against tz. Preserving this order matters: a
// zone-free pattern like "yyyy-MM-dd" only ever succeeds via the calendar
// path, and that is intentional (spec §9 "Date parsing ambiguity").
func tryParse(pattern, value, tz string) (time.Time, bool) {
	layout := translatedLayout(pattern)

	if layoutHasZoneInfo(layout) {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	loc := resolveLocation(tz)
	if t, err := time.ParseInLocation(layout, value, loc); err == nil {
		return t, true
	}

	return time.Time{}, false
}

func layoutHasZoneInfo(layout string) bool {
	return strings.Contains(layout, "Z07") ||
		strings.Contains(layout, "-0700") ||
		strings.Contains(layout, "-07:00") ||
		strings.Contains(layout, "MST")
}

func softFail(sink events.Sink, onSoftFailure func(kind Kind), fieldName string, kind Kind, format string, args ...any) tree.Node {
	if onSoftFailure != nil {
		onSoftFailure(kind)
	}
	if sink != nil {
		sink.Emit(events.New(events.SeverityWarn, "transform-soft-failure", fieldName, format, args...))
	}
	return tree.Null
}

// translateJavaPattern converts a Java SimpleDateFormat-style pattern
// (the wire format spec.md's dateFormat transform inherited from the
// original source) into a Go reference-time layout. No library in the
// retrieval pack translates this token dialect, so this is a small,
// deliberately narrow hand-rolled translator rather than a general
// strftime/Unicode-LDML implementation.
func translateJavaPattern(pattern string) string {
	var sb strings.Builder
	runes := []rune(pattern)
	n := len(runes)
	i := 0

	for i < n {
		c := runes[i]

		if c == '\'' {
			i++
			if i < n && runes[i] == '\'' {
				sb.WriteRune('\'')
				i++
				continue
			}
			start := i
			for i < n && runes[i] != '\'' {
				i++
			}
			sb.WriteString(string(runes[start:i]))
			if i < n {
				i++ // skip closing quote
			}
			continue
		}

		if isPatternLetter(c) {
			j := i
			for j < n && runes[j] == c {
				j++
			}
			sb.WriteString(mapPatternToken(c, j-i))
			i = j
			continue
		}

		sb.WriteRune(c)
		i++
	}

	return sb.String()
}

func isPatternLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func mapPatternToken(c rune, length int) string {
	switch c {
	case 'y':
		if length >= 4 {
			return "2006"
		}
		return "06"
	case 'M':
		switch {
		case length >= 4:
			return "January"
		case length == 3:
			return "Jan"
		case length == 2:
			return "01"
		default:
			return "1"
		}
	case 'd':
		if length >= 2 {
			return "02"
		}
		return "2"
	case 'H':
		return "15"
	case 'h':
		if length >= 2 {
			return "03"
		}
		return "3"
	case 'm':
		if length >= 2 {
			return "04"
		}
		return "4"
	case 's':
		if length >= 2 {
			return "05"
		}
		return "5"
	case 'S':
		return strings.Repeat("0", length)
	case 'X':
		switch length {
		case 1:
			return "Z07"
		case 2:
			return "Z0700"
		default:
			return "Z07:00"
		}
	case 'Z':
		return "-0700"
	case 'z':
		return "MST"
	case 'a':
		return "PM"
	case 'E':
		if length >= 4 {
			return "Monday"
		}
		return "Mon"
	default:
		return strings.Repeat(string(c), length)
	}
}
