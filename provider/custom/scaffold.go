package custom

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/vidlink-cli/vidlink/constant"
)

var scaffoldTemplate = template.Must(template.New("source").Funcs(template.FuncMap{
	"repeat": strings.Repeat,
	"plus":   func(a, b int) int { return a + b },
	"max":    func(n ...int) int { return lo.Max(n) },
}).Parse(constant.SourceTemplate))

// Scaffold renders a starter script for a provider called name that talks to baseURL.
// The result always compiles.
func Scaffold(name, baseURL, author string) ([]byte, error) {
	var buf bytes.Buffer
	err := scaffoldTemplate.Execute(&buf, struct {
		Name, URL, Author                          string
		AnalyzeFn, ConvertFn, SearchFn, DefaultsFn string
	}{
		Name:       name,
		URL:        baseURL,
		Author:     author,
		AnalyzeFn:  constant.AnalyzeFn,
		ConvertFn:  constant.ConvertFn,
		SearchFn:   constant.SearchFn,
		DefaultsFn: constant.DefaultsFn,
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}

	if err := Validate(name, buf.Bytes()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
