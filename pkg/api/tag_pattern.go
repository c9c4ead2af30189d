package api

import (
	"fmt"
	"regexp"
	"strings"
)

// TagPattern is a shell-style wildcard matched against TensorBoard tag names.
// It supports '*', '?', '[seq]' and '[!seq]'; '*' also matches '/'.
type TagPattern struct {
	raw string
	re  *regexp.Regexp
}

// CompileTagPattern compiles a wildcard pattern. An unterminated '[' is taken
// literally.
func CompileTagPattern(pattern string) (TagPattern, error) {
	if pattern == "" {
		return TagPattern{}, invalidPattern("tag_pattern", pattern, "pattern is empty")
	}
	re, err := regexp.Compile(translateWildcard(pattern))
	if err != nil {
		return TagPattern{}, invalidPattern("tag_pattern", pattern, err.Error())
	}
	return TagPattern{raw: pattern, re: re}, nil
}

func (p TagPattern) String() string {
	return p.raw
}

func (p TagPattern) Match(tag string) bool {
	if p.re == nil {
		return false
	}
	return p.re.MatchString(tag)
}

func translateWildcard(pattern string) string {
	var sb strings.Builder
	sb.WriteString(`^(?s:`)
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			sb.WriteString(`.*`)
		case '?':
			sb.WriteString(`.`)
		case '[':
			j := i + 1
			if j < len(runes) && runes[j] == '!' {
				j++
			}
			if j < len(runes) && runes[j] == ']' {
				j++
			}
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				sb.WriteString(`\[`)
				continue
			}
			class := string(runes[i+1 : j])
			class = strings.ReplaceAll(class, `\`, `\\`)
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			} else if strings.HasPrefix(class, "^") {
				class = `\` + class
			}
			sb.WriteString(fmt.Sprintf("[%s]", class))
			i = j
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString(`)$`)
	return sb.String()
}

func compileTagPatterns(field string, patterns []string) ([]TagPattern, error) {
	compiled := make([]TagPattern, 0, len(patterns))
	for _, p := range patterns {
		tp, err := CompileTagPattern(p)
		if err != nil {
			return nil, prefixField(field, err)
		}
		compiled = append(compiled, tp)
	}
	return compiled, nil
}

func matchesAny(patterns []TagPattern, tag string) bool {
	for _, p := range patterns {
		if p.Match(tag) {
			return true
		}
	}
	return false
}
