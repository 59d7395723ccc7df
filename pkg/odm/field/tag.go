// SPDX-License-Identifier: Apache-2.0

package field

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TagKey is the struct tag key read for attribute declarations.
const TagKey = "esodm"

const regexOption = "regex="

// ParseTag parses an attribute struct tag. The first element is the attribute
// name, empty meaning the default name. The remaining elements are either
// flags or key=value pairs. Since regular expressions may contain commas,
// regex= must be the last element and takes the rest of the tag.
//
//	`esodm:"username,keyword,min_length=3,regex=^[a-z]+$"`
//
// A tag of "-" skips the struct field.
func ParseTag(tag string, goType reflect.Type) (name string, skip bool, opts []Option, err error) {
	if tag == "-" {
		return "", true, nil, nil
	}

	var regex string
	if idx := strings.Index(tag, regexOption); idx >= 0 && (idx == 0 || tag[idx-1] == ',') {
		regex = tag[idx+len(regexOption):]
		tag = strings.TrimSuffix(tag[:idx], ",")
		opts = append(opts, WithRegex(regex))
	}

	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])

	var marker Marker
	markerSet := false
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		if !hasValue {
			opt, err := flagOption(key)
			if err != nil {
				return "", false, nil, tagErrorf(name, "%v", err)
			}
			opts = append(opts, opt)
			continue
		}

		switch key {
		case "as":
			kind, found := parseMarkerKind(value)
			if !found || kind == MarkerPlain {
				return "", false, nil, tagErrorf(name, "unknown marker %q", value)
			}
			marker.Kind = kind
			markerSet = true
		case "model":
			marker.Model = value
			markerSet = true
		case "fallback":
			fallback, found := LookupScalar(value)
			if !found {
				return "", false, nil, tagErrorf(name, "unknown fallback type %q", value)
			}
			marker.Fallback = fallback
			markerSet = true
		case "default":
			def, err := parseDefault(value, goType)
			if err != nil {
				return "", false, nil, tagErrorf(name, "invalid default %q: %v", value, err)
			}
			opts = append(opts, func(i *Info) { i.def = def })
		default:
			opt, err := valueOption(key, value)
			if err != nil {
				return "", false, nil, tagErrorf(name, "%v", err)
			}
			opts = append(opts, opt)
		}
	}

	if markerSet {
		if marker.Kind == MarkerPlain && marker.Model != "" {
			marker.Kind = MarkerObject
		}
		opts = append(opts, WithMarker(marker))
	}
	return name, false, opts, nil
}

func flagOption(flag string) (Option, error) {
	switch flag {
	case "pk", "primary_key":
		return WithPrimaryKey(), nil
	case "keyword":
		return WithKeyword(), nil
	case "suggest":
		return WithSuggest(), nil
	case "nullable":
		return WithNullable(true), nil
	case "index":
		return WithIndex(true), nil
	case "const":
		return WithConst(), nil
	case "immutable":
		return WithAllowMutation(false), nil
	default:
		return nil, fmt.Errorf("unknown tag option %q", flag)
	}
}

func valueOption(key, value string) (Option, error) {
	switch key {
	case "alias":
		return WithAlias(value), nil
	case "title":
		return WithTitle(value), nil
	case "description":
		return WithDescription(value), nil
	case "type":
		return WithFieldType(value), nil
	case "gt", "ge", "lt", "le", "multiple_of":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return floatOptions[key](f), nil
	case "min_length", "max_length", "min_items", "max_items", "dims":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return intOptions[key](n), nil
	default:
		return nil, fmt.Errorf("unknown tag option %q", key)
	}
}

var floatOptions = map[string]func(float64) Option{
	"gt":          WithGt,
	"ge":          WithGe,
	"lt":          WithLt,
	"le":          WithLe,
	"multiple_of": WithMultipleOf,
}

var intOptions = map[string]func(int) Option{
	"min_length": WithMinLength,
	"max_length": WithMaxLength,
	"min_items":  WithMinItems,
	"max_items":  WithMaxItems,
	"dims":       WithDims,
}

// parseDefault converts a tag default to the base kind of the attribute type.
// Types without a scalar base kind keep the raw string and are coerced during
// validation.
func parseDefault(value string, goType reflect.Type) (any, error) {
	if goType == nil {
		return value, nil
	}
	for goType.Kind() == reflect.Pointer {
		goType = goType.Elem()
	}
	v := reflect.New(goType).Elem()
	switch goType.Kind() {
	case reflect.String:
		v.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, goType.Bits())
		if err != nil {
			return nil, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, goType.Bits())
		if err != nil {
			return nil, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, goType.Bits())
		if err != nil {
			return nil, err
		}
		v.SetFloat(f)
	default:
		return value, nil
	}
	return v.Interface(), nil
}

func tagErrorf(name, format string, args ...any) error {
	return &SchemaError{Field: name, Reason: fmt.Sprintf(format, args...)}
}
