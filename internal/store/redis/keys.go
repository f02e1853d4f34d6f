package redis

import "strings"

// Collections held by the remote store.
const (
	CollectionComponents = "components"
	CollectionProjects   = "projects"
	CollectionUsers      = "users"
	CollectionIdeas      = "project_ideas"
)

// DefaultKeyPrefix namespaces every key when no prefix is configured.
const DefaultKeyPrefix = "atal"

// Keys builds the Redis keys of the document layout:
//
//	<prefix>:<collection>:doc:<id>   JSON document
//	<prefix>:<collection>:index      sorted set of ids scored by creation time
type Keys struct {
	prefix string
}

// NewKeys returns a key builder for prefix.
func NewKeys(prefix string) Keys {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return Keys{prefix: prefix}
}

// Doc returns the key of one document.
func (k Keys) Doc(collection, id string) string {
	return k.docPrefix(collection) + id
}

// Index returns the key of the collection's ordering index.
func (k Keys) Index(collection string) string {
	return k.prefix + ":" + collection + ":index"
}

func (k Keys) docPrefix(collection string) string {
	return k.prefix + ":" + collection + ":doc:"
}
