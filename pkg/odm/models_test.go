// SPDX-License-Identifier: Apache-2.0

package odm

import (
	"time"

	"github.com/xataio/esodm/pkg/odm/field"
)

type UserProfileODM struct {
	InnerDocument
	UserID   int    `esodm:"user_id"`
	Nickname string `esodm:"nickname,keyword"`
	Gender   int    `esodm:"gender"`
	Address  string `esodm:"address,keyword"`
}

type UserODM struct {
	Document
	ID       int            `esodm:"id,pk"`
	Username string         `esodm:"username,keyword"`
	Profile  map[string]any `esodm:"profile,model=UserProfileODM"`
}

func (UserODM) IndexConfig() Index {
	return Index{
		Name:     "test-index-name",
		Settings: map[string]any{"number_of_shards": 1},
	}
}

// pinyinProfile declares its descriptors in code, with nil defaults.
type pinyinProfile struct {
	InnerDocument
	UserID    int
	Nickname  string
	AvatarURL string
	Gender    int
	Address   string
}

func (pinyinProfile) FieldDescriptors() map[string]*field.Info {
	return map[string]*field.Info{
		"UserID": field.MustNew(nil, field.WithDescription("user id")),
		"Nickname": field.MustNew(nil,
			field.WithDescription("user nickname"),
			field.WithKeyword(),
			field.WithFields(map[string]any{
				"pinyin": map[string]any{
					"type":        "text",
					"store":       false,
					"term_vector": "with_offsets",
					"analyzer":    "pinyin_analyzer",
					"boost":       10,
				},
			}),
		),
		"AvatarURL": field.MustNew(nil, field.WithDescription("user avatar url"), field.WithKeyword()),
		"Gender":    field.MustNew(nil, field.WithDescription("gender")),
		"Address":   field.MustNew(nil, field.WithDescription("address"), field.WithKeyword()),
	}
}

type pinyinUser struct {
	Document
	ID       int            `esodm:"id,pk"`
	Username string         `esodm:"username,keyword"`
	Profile  map[string]any `esodm:"profile,model=pinyinProfile"`
}

func (pinyinUser) ModelConfig() Config {
	return Config{ArbitraryTypesAllowed: true}
}

type status string

func (status) EnumValues() []string { return []string{"draft", "published"} }

type comment struct {
	InnerDocument
	Author string    `esodm:"author,keyword"`
	Body   string    `esodm:"body,min_length=1"`
	At     time.Time `esodm:"at"`
}

type post struct {
	Document
	ID       string                 `esodm:"id,pk"`
	Title    string                 `esodm:"title,keyword"`
	Status   status                 `esodm:"status,default=draft"`
	Views    int64                  `esodm:"views,ge=0"`
	Rating   *float64               `esodm:"rating"`
	Tags     []string               `esodm:"tags"`
	Author   Object[UserProfileODM] `esodm:"author"`
	Comments Nested[comment]        `esodm:"comments"`
	Slug     Keyword[string]        `esodm:"slug"`
	Votes    Common[string]         `esodm:"votes,fallback=int"`
	Meta     map[string]any         `esodm:"meta"`
	TTL      time.Duration          `esodm:"ttl,default=0"`
}

func (post) IndexConfig() Index {
	return Index{
		Name:    `posts-{{ now | date "2006.01" }}`,
		Aliases: map[string]any{"posts": map[string]any{}},
	}
}

type strictModel struct {
	Document
	ID     int         `esodm:"id"`
	Events chan string `esodm:"events"`
}

func (strictModel) ModelConfig() Config {
	return Config{}
}

type looseModel struct {
	Document
	ID     int         `esodm:"id"`
	Events chan string `esodm:"events"`
}
