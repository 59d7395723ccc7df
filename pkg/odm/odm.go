// SPDX-License-Identifier: Apache-2.0

// Package odm derives search index mappings from Go model declarations. A
// model is a struct embedding Document or InnerDocument whose fields are
// declared through `esodm` struct tags and field descriptors. Registering a
// model builds one declaration that both its validator and its index mapping
// are derived from.
package odm

import (
	"github.com/xataio/esodm/pkg/odm/schema"
)

type (
	Document      = schema.Document
	InnerDocument = schema.InnerDocument
	Config        = schema.Config
	Index         = schema.Index
	Kind          = schema.Kind
	Enum          = schema.Enum
)

const (
	KindDocument      = schema.KindDocument
	KindInnerDocument = schema.KindInnerDocument
)

// ConfigProvider is implemented by models declaring their own validation
// configuration.
type ConfigProvider interface {
	ModelConfig() Config
}

// IndexProvider is implemented by document models declaring their index
// configuration.
type IndexProvider interface {
	IndexConfig() Index
}
