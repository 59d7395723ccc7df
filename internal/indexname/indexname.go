// SPDX-License-Identifier: Apache-2.0

// Package indexname renders index names, which may be text templates using
// the sprig function set, e.g. `events-{{ now | date "2006.01" }}`.
package indexname

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jonboulle/clockwork"
)

const maxNameBytes = 255

var (
	ErrEmptyName   = errors.New("index name must not be empty")
	ErrInvalidName = errors.New("invalid index name")
)

// Data is the value templates are executed with.
type Data struct {
	Model string
}

type Renderer struct {
	clock clockwork.Clock
}

type Option func(*Renderer)

func WithClock(clock clockwork.Clock) Option {
	return func(r *Renderer) {
		r.clock = clock
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render executes the name template and checks the result is a valid index
// name. Names without template actions are only checked.
func (r *Renderer) Render(name string, data Data) (string, error) {
	if !strings.Contains(name, "{{") {
		return name, Validate(name)
	}

	tmpl, err := template.New("index_name").
		Funcs(sprig.FuncMap()).
		Funcs(template.FuncMap{"now": r.clock.Now}).
		Option("missingkey=error").
		Parse(name)
	if err != nil {
		return "", fmt.Errorf("parsing index name template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing index name template %q: %w", name, err)
	}
	rendered := strings.TrimSpace(buf.String())
	return rendered, Validate(rendered)
}

// Validate checks the name against the index naming rules shared by
// Elasticsearch and OpenSearch.
func Validate(name string) error {
	switch {
	case name == "":
		return ErrEmptyName
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case len(name) > maxNameBytes:
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidName, name, maxNameBytes)
	case strings.ContainsAny(name[:1], "-_+"):
		return fmt.Errorf("%w: %q must not start with -, _ or +", ErrInvalidName, name)
	case strings.ContainsAny(name, `\/*?"<>| ,#:`):
		return fmt.Errorf("%w: %q contains a forbidden character", ErrInvalidName, name)
	case strings.ToLower(name) != name:
		return fmt.Errorf("%w: %q must be lowercase", ErrInvalidName, name)
	}
	return nil
}
