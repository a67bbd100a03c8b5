package services

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/dasch-swiss/mls-app-ng/pkg/apperrors"
)

//go:embed queries/gravsearch.yaml
var builtinQueries []byte

// QueryResolver turns a named query template and its parameters into a
// Gravsearch query.
type QueryResolver interface {
	Resolve(name string, params map[string]string) (string, error)
}

// QueryTemplates is a QueryResolver over text/template Gravsearch templates.
// It is immutable once built and safe for concurrent use.
type QueryTemplates struct {
	templates map[string]*template.Template
}

var _ QueryResolver = (*QueryTemplates)(nil)

var queryFuncs = template.FuncMap{
	"esc":   escapeLiteral,
	"regex": escapeRegex,
	"iri":   formatIRI,
	"page":  formatPage,
}

// NewQueryTemplates loads the built-in templates and, when overridePath is not
// empty, a YAML file whose templates replace built-ins of the same name or add
// new ones.
func NewQueryTemplates(overridePath string) (*QueryTemplates, error) {
	templates, err := ParseQueryTemplates(builtinQueries)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in queries: %w", err)
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read queries file: %w", err)
		}
		overrides, err := ParseQueryTemplates(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", overridePath, err)
		}
		for name, tmpl := range overrides {
			templates[name] = tmpl
		}
	}

	return &QueryTemplates{templates: templates}, nil
}

// ParseQueryTemplates parses a YAML mapping of template name to template text.
func ParseQueryTemplates(data []byte) (map[string]*template.Template, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template, len(raw))
	for name, text := range raw {
		tmpl, err := template.New(name).Funcs(queryFuncs).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

// Resolve renders the named template. Every parameter the template references
// must be present in params.
func (q *QueryTemplates) Resolve(name string, params map[string]string) (string, error) {
	tmpl, ok := q.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnknownQuery, name)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, params); err != nil {
		return "", fmt.Errorf("%w: query %s: %v", apperrors.ErrInvalidArgument, name, err)
	}
	return sb.String(), nil
}

// Names returns the template names in sorted order.
func (q *QueryTemplates) Names() []string {
	names := make([]string, 0, len(q.templates))
	for name := range q.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// escapeLiteral escapes s for use inside a double quoted SPARQL literal.
func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// escapeRegex quotes s as a literal regex pattern for use inside a double
// quoted SPARQL literal, such as the pattern argument of FILTER regex.
func escapeRegex(s string) string {
	return escapeLiteral(regexp.QuoteMeta(s))
}

// formatIRI wraps an IRI in angle brackets, rejecting characters SPARQL does
// not allow in IRI references.
func formatIRI(s string) (string, error) {
	if s == "" || strings.ContainsAny(s, "<>\"{}|^`\\ \t\n") {
		return "", fmt.Errorf("invalid IRI %q", s)
	}
	return "<" + s + ">", nil
}

// formatPage validates a page number. Gravsearch OFFSET counts pages, not rows.
func formatPage(s string) (string, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return "", fmt.Errorf("invalid page %q", s)
	}
	return strconv.Itoa(n), nil
}
