// SPDX-License-Identifier: Apache-2.0

package field

import (
	"maps"
	"slices"
)

// Option configures a descriptor. Options copy their inputs, so the same
// option can be applied to several descriptors.
type Option func(*Info)

func WithDefaultFactory(factory func() any) Option {
	return func(i *Info) {
		i.defaultFactory = factory
	}
}

func WithAlias(alias string) Option {
	return func(i *Info) {
		i.alias = alias
	}
}

func WithTitle(title string) Option {
	return func(i *Info) {
		i.title = title
	}
}

func WithDescription(description string) Option {
	return func(i *Info) {
		i.description = description
	}
}

func WithExclude(exclude any) Option {
	return func(i *Info) {
		i.exclude = exclude
	}
}

func WithInclude(include any) Option {
	return func(i *Info) {
		i.include = include
	}
}

// WithConst requires values to equal the default.
func WithConst() Option {
	return func(i *Info) {
		i.constant = true
	}
}

func WithGt(v float64) Option {
	return func(i *Info) {
		i.gt = &v
	}
}

func WithGe(v float64) Option {
	return func(i *Info) {
		i.ge = &v
	}
}

func WithLt(v float64) Option {
	return func(i *Info) {
		i.lt = &v
	}
}

func WithLe(v float64) Option {
	return func(i *Info) {
		i.le = &v
	}
}

func WithMultipleOf(v float64) Option {
	return func(i *Info) {
		i.multipleOf = &v
	}
}

func WithMinItems(n int) Option {
	return func(i *Info) {
		i.minItems = &n
	}
}

func WithMaxItems(n int) Option {
	return func(i *Info) {
		i.maxItems = &n
	}
}

func WithMinLength(n int) Option {
	return func(i *Info) {
		i.minLength = &n
	}
}

func WithMaxLength(n int) Option {
	return func(i *Info) {
		i.maxLength = &n
	}
}

func WithAllowMutation(allow bool) Option {
	return func(i *Info) {
		i.allowMutation = allow
	}
}

func WithRegex(regex string) Option {
	return func(i *Info) {
		i.regex = regex
	}
}

// WithSchemaExtra merges extra keys into the descriptor's extra metadata.
func WithSchemaExtra(extra map[string]any) Option {
	extra = cloneMap(extra)
	return func(i *Info) {
		if i.schemaExtra == nil {
			i.schemaExtra = map[string]any{}
		}
		maps.Copy(i.schemaExtra, extra)
	}
}

func WithExtra(key string, value any) Option {
	return func(i *Info) {
		if i.extra == nil {
			i.extra = map[string]any{}
		}
		i.extra[key] = value
	}
}

// WithPrimaryKey marks the attribute as the document identifier.
func WithPrimaryKey() Option {
	return func(i *Info) {
		i.primaryKey = true
	}
}

func WithNullable(nullable bool) Option {
	return func(i *Info) {
		i.nullable = &nullable
	}
}

func WithForeignKey(fk any) Option {
	return func(i *Info) {
		i.foreignKey = fk
	}
}

func WithIndex(index bool) Option {
	return func(i *Info) {
		i.index = &index
	}
}

func WithSAColumn(column any) Option {
	return func(i *Info) {
		i.saColumn = column
		i.saColumnSet = true
	}
}

func WithSAColumnArgs(args ...any) Option {
	args = slices.Clone(args)
	return func(i *Info) {
		i.saColumnArgs = args
		i.saArgsSet = true
	}
}

func WithSAColumnKwargs(kwargs map[string]any) Option {
	kwargs = cloneMap(kwargs)
	return func(i *Info) {
		i.saColumnKwargs = kwargs
		i.saKwargsSet = true
	}
}

// WithKeyword requests a parallel exact match sub-field named "keyword".
func WithKeyword() Option {
	return func(i *Info) {
		i.keyword = true
	}
}

// WithFields merges custom sub-field definitions, keyed by sub-field name.
func WithFields(fields map[string]any) Option {
	fields = cloneMap(fields)
	return func(i *Info) {
		if i.fields == nil {
			i.fields = make(map[string]any, len(fields))
		}
		maps.Copy(i.fields, fields)
	}
}

// WithSuggest is reserved for completion suggester support.
func WithSuggest() Option {
	return func(i *Info) {
		i.suggest = true
	}
}

func WithMarker(m Marker) Option {
	return func(i *Info) {
		i.marker = m
	}
}

// WithFieldType forces the search field type, bypassing type inference.
// Dense vectors also need WithDims.
func WithFieldType(name string) Option {
	return func(i *Info) {
		i.fieldType = name
	}
}

func WithDims(dims int) Option {
	return func(i *Info) {
		i.dims = dims
	}
}
