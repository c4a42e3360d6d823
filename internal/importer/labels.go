package importer

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"pm-dashboard/internal/models"
)

//go:embed labels.yaml
var labelsYAML []byte

// Labels: нормализованные метки выгрузки -> колонки и статусы.
type Labels struct {
	fields   map[string]fieldLabel
	statuses map[string]models.ProjectStatus
}

// fieldLabel: колонка и позиция метки в списке вариантов этой колонки
type fieldLabel struct {
	column string
	rank   int
}

type labelFile struct {
	Fields   map[string][]string `yaml:"fields"`
	Statuses map[string][]string `yaml:"statuses"`
}

// DefaultLabels: таблица из labels.yaml, разбирается один раз при старте.
var DefaultLabels = mustParseLabels(labelsYAML)

func mustParseLabels(data []byte) *Labels {
	l, err := ParseLabels(data)
	if err != nil {
		panic(err)
	}
	return l
}

func ParseLabels(data []byte) (*Labels, error) {
	var f labelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse label table: %w", err)
	}

	l := &Labels{
		fields:   make(map[string]fieldLabel),
		statuses: make(map[string]models.ProjectStatus),
	}
	for column, variants := range f.Fields {
		for i, v := range variants {
			n := Normalize(v)
			if prev, dup := l.fields[n]; dup {
				if prev.column != column {
					return nil, fmt.Errorf("label %q maps to both %s and %s", v, prev.column, column)
				}
				continue
			}
			l.fields[n] = fieldLabel{column: column, rank: i}
		}
	}
	for status, variants := range f.Statuses {
		s := models.ProjectStatus(status)
		if !validStatus(s) {
			return nil, fmt.Errorf("unknown project status %q in label table", status)
		}
		l.statuses[Normalize(status)] = s
		for _, v := range variants {
			l.statuses[Normalize(v)] = s
		}
	}
	return l, nil
}

func validStatus(s models.ProjectStatus) bool {
	for _, v := range models.ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Column: колонка projects для метки из выгрузки.
func (l *Labels) Column(label string) (string, bool) {
	c, _, ok := l.resolve(label)
	return c, ok
}

func (l *Labels) resolve(label string) (string, int, bool) {
	f, ok := l.fields[Normalize(label)]
	return f.column, f.rank, ok
}

func (l *Labels) Status(value string) (models.ProjectStatus, bool) {
	s, ok := l.statuses[Normalize(value)]
	return s, ok
}

// Normalize: нижний регистр, без диакритики, пунктуации и пробелов.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(out) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
