package transform

import (
	"regexp"
	"strings"

	"github.com/vishalvchavan/streamsmt/internal/tree"
)

// applyMask implements spec §4.3 "mask" / §6.2: null stays null, arrays
// recurse element-wise, and otherwise the value is coerced to text and
// rewritten per one of the fixed patterns.
func applyMask(d Descriptor, val tree.Node) tree.Node {
	switch val.Kind() {
	case tree.KindMissing, tree.KindNull:
		return val
	case tree.KindArray:
		elems := val.ArrayValue()
		out := make([]tree.Node, len(elems))
		for i, el := range elems {
			out[i] = applyMask(d, el)
		}
		return tree.Array(out)
	}

	text := coerceToText(val)
	return tree.Text(maskText(strings.ToLower(d.Pattern), d.CustomPattern, text))
}

func maskText(pattern, customPattern, text string) string {
	switch pattern {
	case "ssn":
		return maskSSN(text)
	case "creditcard":
		return maskCreditCard(text)
	case "email":
		return maskEmail(text)
	case "phone":
		return maskPhone(text)
	case "name":
		return maskName(text)
	case "full":
		return maskFull(text)
	case "partial":
		return maskPartial(text)
	case "custom":
		return maskCustom(customPattern, text)
	default:
		return maskPartial(text)
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func maskSSN(text string) string {
	digits := digitsOnly(text)
	if len(digits) < 4 {
		return "****"
	}
	return "***-**-" + lastN(digits, 4)
}

func maskCreditCard(text string) string {
	digits := digitsOnly(text)
	switch {
	case len(digits) >= 12:
		return "****-****-****-" + lastN(digits, 4)
	case len(digits) >= 4:
		return "****-" + lastN(digits, 4)
	default:
		return "****"
	}
}

func maskEmail(text string) string {
	at := strings.IndexByte(text, '@')
	if at < 0 {
		return "****@****.***"
	}
	local := text[:at]
	domain := text[at:] // includes '@'
	if len(local) <= 1 {
		return "*" + domain
	}
	return local[:1] + "***" + domain
}

func maskPhone(text string) string {
	digits := digitsOnly(text)
	switch {
	case len(digits) >= 10:
		return "***-***-" + lastN(digits, 4)
	case len(digits) >= 4:
		return "***-" + lastN(digits, 4)
	default:
		return "****"
	}
}

func maskName(text string) string {
	tokens := strings.Fields(text)
	masked := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		r := []rune(tok)
		if len(r) == 0 {
			continue
		}
		masked = append(masked, string(r[0])+"***")
	}
	return strings.Join(masked, " ")
}

func maskFull(text string) string {
	n := len(text)
	if n > 16 {
		n = 16
	}
	return strings.Repeat("*", n)
}

func maskPartial(text string) string {
	if len(text) < 3 {
		return strings.Repeat("*", len(text))
	}
	r := []rune(text)
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}

func maskCustom(customPattern, text string) string {
	parts := strings.SplitN(customPattern, "|", 2)
	if len(parts) != 2 {
		return maskPartial(text)
	}
	re, err := regexp.Compile(parts[0])
	if err != nil {
		return maskPartial(text)
	}
	return re.ReplaceAllString(text, parts[1])
}
