package validator

import (
	"strconv"
	"strings"
)

// Rule is a single predicate over a field value.
type Rule struct {
	key      string
	params   []string
	implicit bool
	check    func(value string) bool
}

// Required fails on an empty or whitespace-only value.
func Required() Rule {
	return Rule{
		key:      "required",
		implicit: true,
		check: func(v string) bool {
			return strings.TrimSpace(v) != ""
		},
	}
}

// Alpha accepts one or more ASCII letters and nothing else.
func Alpha() Rule {
	return tagRule("alpha", "alpha")
}

// Email accepts a syntactically valid email address.
func Email() Rule {
	return tagRule("email", "email")
}

// Numeric accepts integers and decimals, optionally signed.
func Numeric() Rule {
	return tagRule("numeric", "numeric")
}

// Max bounds the length of the value in characters.
func Max(n int) Rule {
	r := tagRule("max", "max="+strconv.Itoa(n))
	r.params = []string{strconv.Itoa(n)}
	return r
}

// Exists fails when lookup reports the referenced row is missing.
func Exists(lookup func() bool) Rule {
	return Rule{
		key: "exists",
		check: func(string) bool {
			return lookup()
		},
	}
}

func tagRule(key, tag string) Rule {
	return Rule{
		key: key,
		check: func(v string) bool {
			Setup()
			return validate.Var(v, tag) == nil
		},
	}
}

// Check runs every rule against value and records each failure under field.
// Rules other than Required are skipped for empty values so that a missing
// field reports only that it is required.
func (e Errors) Check(field, value string, rules ...Rule) {
	empty := strings.TrimSpace(value) == ""
	for _, r := range rules {
		if empty && !r.implicit {
			continue
		}
		if !r.check(value) {
			e.Add(field, Message(r.key, field, r.params...))
		}
	}
}
