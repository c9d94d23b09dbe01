package docx

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	jinjaTag = regexp.MustCompile(`(?s)\{\{(.*?)\}\}|\{%(.*?)%\}|\{#.*?#\}`)
	pathExpr = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	ident    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	defaultFilter = regexp.MustCompile(`^(?:default|d)\(\s*("(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*')\s*(?:,\s*(true|false)\s*)?\)$`)
	smartQuotes   = strings.NewReplacer("\u201c", `"`, "\u201d", `"`, "\u2018", "'", "\u2019", "'")
)

// Filters that take the piped value as their only argument
var plainFilters = map[string]string{
	"upper":      "upper",
	"lower":      "lower",
	"capitalize": "capitalize",
	"trim":       "trim",
}

type block struct {
	kind    string // "for" or "if"
	loopVar string // jinja name bound by a for block
	index   string // template variable holding the 0-based index
}

// translator rewrites the supported jinja subset into text/template actions
type translator struct {
	stack []block
}

func translate(src string) (string, error) {
	tr := &translator{}

	var out strings.Builder
	last := 0
	for _, m := range jinjaTag.FindAllStringSubmatchIndex(src, -1) {
		out.WriteString(src[last:m[0]])
		last = m[1]

		var (
			action string
			err    error
		)
		switch {
		case m[2] != -1:
			action, err = tr.expression(cleanTag(src[m[2]:m[3]]))
		case m[4] != -1:
			action, err = tr.statement(cleanTag(src[m[4]:m[5]]))
		default:
			continue // comment
		}
		if err != nil {
			return "", err
		}
		out.WriteString(action)
	}
	out.WriteString(src[last:])

	if n := len(tr.stack); n > 0 {
		return "", fmt.Errorf("unclosed {%% %s %%} block", tr.stack[n-1].kind)
	}
	return out.String(), nil
}

// cleanTag drops whitespace control dashes and any XML entities Word wrote inside the tag
func cleanTag(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSuffix(s, "-")
	return strings.TrimSpace(html.UnescapeString(s))
}

func (tr *translator) expression(expr string) (string, error) {
	segments := splitFilters(expr)
	name := strings.TrimSpace(segments[0])
	filters := segments[1:]

	var (
		value string
		err   error
	)
	// default must see a missing key as undefined instead of failing the render
	if len(filters) > 0 && defaultFilter.MatchString(smartQuotes.Replace(strings.TrimSpace(filters[0]))) {
		value, err = tr.lookup(name)
	} else {
		value, err = tr.path(name)
	}
	if err != nil {
		return "", err
	}

	for _, f := range filters {
		f = smartQuotes.Replace(strings.TrimSpace(f))
		if fn, ok := plainFilters[f]; ok {
			value = "(" + fn + " " + value + ")"
			continue
		}
		m := defaultFilter.FindStringSubmatch(f)
		if m == nil {
			return "", fmt.Errorf("unsupported filter %q in {{ %s }}", f, expr)
		}
		fallback, err := quoted(m[1])
		if err != nil {
			return "", fmt.Errorf("bad default in {{ %s }}: %w", expr, err)
		}
		value = fmt.Sprintf("(default %s %t %s)", fallback, m[2] == "true", value)
	}
	return "{{text " + value + "}}", nil
}

// splitFilters cuts expr at every | that is not inside a quoted argument
func splitFilters(expr string) []string {
	var (
		out   []string
		quote rune
		start int
	)
	for i, r := range expr {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'' || r == '\u201c' || r == '\u2018':
			quote = r
			if r == '\u201c' {
				quote = '\u201d'
			} else if r == '\u2018' {
				quote = '\u2019'
			}
		case r == '|':
			out = append(out, expr[start:i])
			start = i + 1
		}
	}
	return append(out, expr[start:])
}

// quoted turns a jinja string literal into a Go template string literal
func quoted(lit string) (string, error) {
	if strings.HasPrefix(lit, "'") {
		inner := lit[1 : len(lit)-1]
		inner = strings.ReplaceAll(inner, `\'`, "'")
		inner = strings.ReplaceAll(inner, `"`, `\"`)
		lit = `"` + inner + `"`
	}
	s, err := strconv.Unquote(lit)
	if err != nil {
		return "", err
	}
	return strconv.Quote(s), nil
}

func (tr *translator) statement(stmt string) (string, error) {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty {%% %%} tag")
	}

	switch fields[0] {
	case "for":
		if len(fields) != 4 || fields[2] != "in" || !ident.MatchString(fields[1]) {
			return "", fmt.Errorf("unsupported loop {%% %s %%}", stmt)
		}
		list, err := tr.path(fields[3])
		if err != nil {
			return "", err
		}
		b := block{kind: "for", loopVar: fields[1], index: fmt.Sprintf("$loop%d", len(tr.stack))}
		tr.stack = append(tr.stack, b)
		return fmt.Sprintf("{{range %s, $%s := %s}}", b.index, b.loopVar, list), nil

	case "if", "elif":
		if len(fields) != 2 {
			return "", fmt.Errorf("unsupported condition {%% %s %%}", stmt)
		}
		cond, err := tr.path(fields[1])
		if err != nil {
			return "", err
		}
		if fields[0] == "elif" {
			if err := tr.expectOpen("if", stmt); err != nil {
				return "", err
			}
			return "{{else if " + cond + "}}", nil
		}
		tr.stack = append(tr.stack, block{kind: "if"})
		return "{{if " + cond + "}}", nil

	case "else":
		if len(tr.stack) == 0 {
			return "", fmt.Errorf("{%% else %%} outside a block")
		}
		return "{{else}}", nil

	case "endfor", "endif":
		if err := tr.expectOpen(strings.TrimPrefix(fields[0], "end"), stmt); err != nil {
			return "", err
		}
		tr.stack = tr.stack[:len(tr.stack)-1]
		return "{{end}}", nil
	}

	return "", fmt.Errorf("unsupported tag {%% %s %%}", stmt)
}

func (tr *translator) expectOpen(kind, stmt string) error {
	if n := len(tr.stack); n == 0 || tr.stack[n-1].kind != kind {
		return fmt.Errorf("{%% %s %%} without matching {%% %s %%}", stmt, kind)
	}
	return nil
}

// path maps a dotted jinja name to a template expression: loop variables
// become $vars, loop.index reads the range index, anything else is a root key.
func (tr *translator) path(expr string) (string, error) {
	if !pathExpr.MatchString(expr) {
		return "", fmt.Errorf("unsupported expression %q", expr)
	}
	parts := strings.Split(expr, ".")
	head, rest := parts[0], parts[1:]

	for i := len(tr.stack) - 1; i >= 0; i-- {
		b := tr.stack[i]
		if b.kind != "for" {
			continue
		}
		if head == b.loopVar {
			return "$" + strings.Join(append([]string{b.loopVar}, rest...), "."), nil
		}
		if head == "loop" && len(rest) == 1 {
			switch rest[0] {
			case "index":
				return "(inc " + b.index + ")", nil
			case "index0":
				return b.index, nil
			}
		}
	}

	return "$." + expr, nil
}

// lookup is path for values that may be absent: the result is nil instead of an execution error
func (tr *translator) lookup(expr string) (string, error) {
	p, err := tr.path(expr)
	if err != nil || !strings.HasPrefix(p, "$") {
		return p, err
	}
	parts := strings.Split(p, ".")
	base := parts[0]
	keys := make([]string, 0, len(parts)-1)
	for _, k := range parts[1:] {
		keys = append(keys, strconv.Quote(k))
	}
	if len(keys) == 0 {
		return base, nil
	}
	return "(field " + base + " " + strings.Join(keys, " ") + ")", nil
}
