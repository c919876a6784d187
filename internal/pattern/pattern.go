// Package pattern parses gitignore-style pattern lines into matchable rules.
//
// A Rule is immutable once parsed. Matching follows gitignore semantics:
// '*' and '?' never cross a path separator, '**' does, a leading '/' anchors
// the pattern to the root, a trailing '/' restricts the rule to directories,
// and a leading '!' negates the rule (re-includes a previously excluded path).
package pattern

import (
	"errors"
	"regexp"
	"strings"
)

// Rule is a single parsed ignore line.
type Rule struct {
	// Raw is the original pattern line, before any prefix/suffix stripping.
	Raw string

	// Negated is true for '!' rules, which re-include matching paths.
	Negated bool

	// DirOnly is true for patterns with a trailing '/', which never match files.
	DirOnly bool

	// Anchored is true for patterns with a leading '/', which match only
	// against the full path relative to the root.
	Anchored bool

	matcher *regexp.Regexp
}

// Match reports whether the rule matches the given root-relative path.
// relativePath must use forward slashes and carry no leading or trailing '/'.
func (r *Rule) Match(relativePath string, isDir bool) bool {
	if r.DirOnly && !isDir {
		return false
	}
	if relativePath == "" || relativePath == "." {
		return false
	}
	return r.matcher.MatchString(relativePath)
}

// Set is an ordered sequence of rules from a single source (builtin defaults,
// a gitignore file, a preset, or user CLI patterns). Order matters: the last
// matching rule wins.
type Set struct {
	rules []Rule
}

// Parse builds a Set from raw pattern lines. Blank lines, whitespace-only
// lines and '#' comments are dropped. Malformed patterns never fail; they
// degrade to literal-string matching.
func Parse(lines []string) Set {
	set := Set{rules: make([]Rule, 0, len(lines))}
	for _, line := range lines {
		if rule, ok := parseLine(line); ok {
			set.rules = append(set.rules, rule)
		}
	}
	return set
}

// Rules returns the parsed rules in source order.
func (s Set) Rules() []Rule {
	return s.rules
}

// Len returns the number of rules in the set.
func (s Set) Len() int {
	return len(s.rules)
}

// Match scans the set in order and returns the polarity of the last rule
// matching relativePath. matched is false when no rule matches.
func (s Set) Match(relativePath string, isDir bool) (matched bool, negated bool) {
	for i := range s.rules {
		if s.rules[i].Match(relativePath, isDir) {
			matched = true
			negated = s.rules[i].Negated
		}
	}
	return matched, negated
}

// parseLine parses one pattern line. ok is false for blank lines and comments.
func parseLine(line string) (Rule, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Rule{}, false
	}

	rule := Rule{Raw: trimmed}
	body := trimmed

	if strings.HasPrefix(body, "!") {
		rule.Negated = true
		body = body[1:]
	}
	if strings.HasSuffix(body, "/") && !strings.HasSuffix(body, "\\/") {
		rule.DirOnly = true
		body = strings.TrimSuffix(body, "/")
	}
	if strings.HasPrefix(body, "/") {
		rule.Anchored = true
		body = strings.TrimPrefix(body, "/")
	}
	if body == "" {
		// Lines like "/" or "!/" match nothing.
		rule.matcher = regexp.MustCompile(`\A\z`)
		return rule, true
	}

	expr, err := translate(body)
	if err != nil {
		// Unbalanced character class or similar: fall back to matching the
		// pattern body as a literal string.
		expr = regexp.QuoteMeta(body)
	}

	if rule.Anchored {
		expr = `\A` + expr + `\z`
	} else {
		// Unanchored rules match against any path suffix aligned on separators.
		expr = `(\A|/)` + expr + `\z`
	}

	compiled, compileErr := regexp.Compile(expr)
	if compileErr != nil {
		compiled = regexp.MustCompile(`(\A|/)` + regexp.QuoteMeta(body) + `\z`)
	}
	rule.matcher = compiled
	return rule, true
}

// translate converts a gitignore glob body into a regular expression over a
// slash-separated relative path. It returns an error for unbalanced
// character classes so the caller can degrade to literal matching.
func translate(body string) (string, error) {
	var sb strings.Builder
	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch ch {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				// Collapse the '**' and any directly adjacent separators into
				// one cross-directory wildcard.
				j := i + 2
				switch {
				case i == 0 && j < len(runes) && runes[j] == '/':
					// Leading "**/" matches at any depth, including zero.
					sb.WriteString(`([^/]*/)*`)
					i = j
				case j == len(runes) && i > 0 && runes[i-1] == '/':
					// Trailing "/**" matches everything underneath.
					sb.WriteString(`.*`)
					i = j - 1
				case j < len(runes) && runes[j] == '/' && i > 0 && runes[i-1] == '/':
					// Interior "/**/" matches zero or more directories. The
					// preceding '/' was already emitted, so swallow the next.
					sb.WriteString(`([^/]*/)*`)
					i = j
				default:
					// Bare "**" inside a segment behaves like a greedy '*'
					// that may cross separators.
					sb.WriteString(`.*`)
					i = j - 1
				}
			} else {
				sb.WriteString(`[^/]*`)
			}
		case '?':
			sb.WriteString(`[^/]`)
		case '[':
			class, consumed, err := translateClass(runes[i:])
			if err != nil {
				return "", err
			}
			sb.WriteString(class)
			i += consumed - 1
		case '\\':
			if i+1 < len(runes) {
				sb.WriteString(regexp.QuoteMeta(string(runes[i+1])))
				i++
			} else {
				sb.WriteString(`\\`)
			}
		default:
			sb.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	return sb.String(), nil
}

// translateClass converts a character class starting at runes[0] == '['.
// It returns the regexp fragment and the number of runes consumed.
func translateClass(runes []rune) (string, int, error) {
	var sb strings.Builder
	sb.WriteByte('[')

	i := 1
	negatedClass := false
	if i < len(runes) && (runes[i] == '!' || runes[i] == '^') {
		sb.WriteByte('^')
		negatedClass = true
		i++
	}
	// A ']' directly after the opening bracket is a literal member.
	if i < len(runes) && runes[i] == ']' {
		sb.WriteString(`\]`)
		i++
	}
	for i < len(runes) {
		ch := runes[i]
		switch ch {
		case ']':
			if negatedClass {
				// A class never matches the path separator.
				sb.WriteByte('/')
			}
			sb.WriteByte(']')
			return sb.String(), i + 1, nil
		case '\\':
			sb.WriteString(`\\`)
		default:
			if ch == '^' || ch == '[' {
				sb.WriteByte('\\')
			}
			sb.WriteRune(ch)
		}
		i++
	}
	return "", 0, errUnbalancedClass
}

var errUnbalancedClass = errors.New("pattern: unbalanced character class")
