package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"text/template"
	"unicode"

	"github.com/johnquangdev/acta-generator/internal/domain/entities"
)

// Parts that may carry placeholders
var templatedPart = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)

// Renderer fills docxtpl style Word templates:
//
//	{{ FECHA }}
//	{% for a in ASISTENTES_REUNION %}{{ a.nombreasistentereu }}{% endfor %}
//	{%tr for c in COMPROMISOS_R %} ... {%tr endfor %}   repeats the enclosing table row
//	{% if SEDE %} ... {% else %} ... {% endif %}
//	{{ SEDE|default('Sin sede')|upper }}
//
// Every key a template references must exist in the data unless the
// expression starts with a default filter. Supported filters are default
// (alias d), upper, lower, capitalize and trim; any other is a RenderError.
type Renderer struct{}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render returns a new .docx with the data substituted into tmpl
func (r *Renderer) Render(name string, tmpl []byte, data map[string]interface{}) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(tmpl), int64(len(tmpl)))
	if err != nil {
		return nil, &entities.RenderError{Template: name, Err: fmt.Errorf("not a docx archive: %w", err)}
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)

	found := false
	for _, f := range zr.File {
		if !templatedPart.MatchString(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, &entities.RenderError{Template: name, Err: fmt.Errorf("copy %s: %w", f.Name, err)}
			}
			continue
		}
		if f.Name == "word/document.xml" {
			found = true
		}

		src, err := readPart(f)
		if err != nil {
			return nil, &entities.RenderError{Template: name, Err: err}
		}

		rendered, err := renderPart(f.Name, src, data)
		if err != nil {
			return nil, &entities.RenderError{Template: name, Err: err}
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: f.Modified})
		if err != nil {
			return nil, &entities.RenderError{Template: name, Err: err}
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return nil, &entities.RenderError{Template: name, Err: err}
		}
	}

	if !found {
		return nil, &entities.RenderError{Template: name, Err: fmt.Errorf("word/document.xml missing")}
	}
	if err := zw.Close(); err != nil {
		return nil, &entities.RenderError{Template: name, Err: err}
	}
	return out.Bytes(), nil
}

func readPart(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	return string(b), nil
}

func renderPart(partName, src string, data map[string]interface{}) (string, error) {
	src = mergeRuns(src)

	for _, kind := range []string{"tr", "tc", "p"} {
		var err error
		if src, err = expandBlockTags(src, kind); err != nil {
			return "", fmt.Errorf("%s: %w", partName, err)
		}
	}

	translated, err := translate(src)
	if err != nil {
		return "", fmt.Errorf("%s: %w", partName, err)
	}

	t, err := template.New(partName).
		Option("missingkey=error").
		Funcs(funcs).
		Parse(translated)
	if err != nil {
		return "", fmt.Errorf("%s: %w", partName, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	if err := wellFormed(buf.String()); err != nil {
		return "", fmt.Errorf("%s renders to malformed XML: %w", partName, err)
	}
	return buf.String(), nil
}

var (
	// Word splits typed text into runs at will; braces of one tag may land in different runs
	splitOpen  = regexp.MustCompile(`\{(?:<[^>]*>)+([{%#])`)
	splitClose = regexp.MustCompile(`([%}#])(?:<[^>]*>)+\}`)
	tagRegion  = regexp.MustCompile(`(?s)\{\{.*?\}\}|\{%.*?%\}|\{#.*?#\}`)
	runBreak   = regexp.MustCompile(`(?s)</w:t>.*?<w:t(?:\s[^>]*)?>`)

	// markup a merge must never remove
	structural = regexp.MustCompile(`</?w:(?:p|tc|tr|tbl|body|hdr|ftr|txbxContent|sdtContent)(?:\s[^>]*)?/?>`)

	elementTag = map[string]*regexp.Regexp{
		"tr": regexp.MustCompile(`</?w:tr(?:\s[^>]*)?/?>`),
		"tc": regexp.MustCompile(`</?w:tc(?:\s[^>]*)?/?>`),
		"p":  regexp.MustCompile(`</?w:p(?:\s[^>]*)?/?>`),
	}
)

// mergeRuns removes the run markup Word leaves inside template tags.
// Only markup within one paragraph is touched.
func mergeRuns(src string) string {
	src = splitOpen.ReplaceAllStringFunc(src, func(m string) string {
		if structural.MatchString(m) {
			return m
		}
		return "{" + m[len(m)-1:]
	})
	src = splitClose.ReplaceAllStringFunc(src, func(m string) string {
		if structural.MatchString(m) {
			return m
		}
		return m[:1] + "}"
	})
	return tagRegion.ReplaceAllStringFunc(src, func(tag string) string {
		if structural.MatchString(tag) {
			return tag
		}
		return runBreak.ReplaceAllString(tag, "")
	})
}

// expandBlockTags replaces the element enclosing a {%tr ...%} style tag with the plain tag
func expandBlockTags(src, kind string) (string, error) {
	marker := "{%" + kind + " "
	tags := elementTag[kind]

	for {
		idx := strings.Index(src, marker)
		if idx == -1 {
			return src, nil
		}

		end := strings.Index(src[idx:], "%}")
		if end == -1 {
			return "", fmt.Errorf("unterminated %s tag", marker)
		}
		end += idx + 2
		inner := strings.TrimSpace(src[idx+len(marker) : end-2])

		open := enclosingStart(src[:idx], tags)
		if open == -1 {
			return "", fmt.Errorf("%s%s %%} is not inside a <w:%s> element", marker, inner, kind)
		}
		c := matchingEnd(src[end:], tags)
		if c == -1 {
			return "", fmt.Errorf("%s%s %%} has no closing </w:%s>", marker, inner, kind)
		}
		c += end

		src = src[:open] + "{% " + inner + " %}" + src[c:]
	}
}

// enclosingStart returns the offset of the innermost element still open at the end of s
func enclosingStart(s string, tags *regexp.Regexp) int {
	locs := tags.FindAllStringIndex(s, -1)
	depth := 0
	for i := len(locs) - 1; i >= 0; i-- {
		t := s[locs[i][0]:locs[i][1]]
		switch {
		case strings.HasSuffix(t, "/>"):
		case strings.HasPrefix(t, "</"):
			depth++
		case depth == 0:
			return locs[i][0]
		default:
			depth--
		}
	}
	return -1
}

// matchingEnd returns the offset just past the close tag of the element s starts inside
func matchingEnd(s string, tags *regexp.Regexp) int {
	depth := 0
	for _, loc := range tags.FindAllStringIndex(s, -1) {
		t := s[loc[0]:loc[1]]
		switch {
		case strings.HasSuffix(t, "/>"):
		case !strings.HasPrefix(t, "</"):
			depth++
		case depth == 0:
			return loc[1]
		default:
			depth--
		}
	}
	return -1
}

// wellFormed reports the first XML syntax error in a rendered part
func wellFormed(part string) error {
	d := xml.NewDecoder(strings.NewReader(part))
	for {
		_, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

var funcs = template.FuncMap{
	"text":       escapeText,
	"inc":        func(i int) int { return i + 1 },
	"field":      field,
	"default":    defaultValue,
	"upper":      func(v interface{}) string { return strings.ToUpper(fmt.Sprint(v)) },
	"lower":      func(v interface{}) string { return strings.ToLower(fmt.Sprint(v)) },
	"trim":       func(v interface{}) string { return strings.TrimSpace(fmt.Sprint(v)) },
	"capitalize": capitalize,
}

// field walks nested maps and yields nil for anything missing
func field(v interface{}, keys ...string) interface{} {
	for _, k := range keys {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		if v, ok = m[k]; !ok {
			return nil
		}
	}
	return v
}

// defaultValue mirrors jinja's default(value, boolean)
func defaultValue(fallback string, orEmpty bool, v interface{}) interface{} {
	if v == nil {
		return fallback
	}
	if !orEmpty {
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map:
		if rv.Len() == 0 {
			return fallback
		}
	case reflect.Bool:
		if !rv.Bool() {
			return fallback
		}
	}
	return v
}

func capitalize(v interface{}) string {
	s := []rune(strings.ToLower(fmt.Sprint(v)))
	if len(s) == 0 {
		return ""
	}
	s[0] = unicode.ToUpper(s[0])
	return string(s)
}

// escapeText escapes a value for a <w:t> element and turns newlines into line breaks
func escapeText(v interface{}) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(fmt.Sprint(v)))
	s := strings.ReplaceAll(b.String(), "&#xD;", "")
	return strings.ReplaceAll(s, "&#xA;", `</w:t><w:br/><w:t xml:space="preserve">`)
}
