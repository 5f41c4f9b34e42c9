package query

import (
	"net/url"
	"strings"
)

// Key identifies one cached query: a resource name plus its serialized
// filter and pagination parameters.
type Key struct {
	Resource string
	Params   string
}

// NewKey builds a Key with a canonical parameter encoding. Empty values are
// dropped, so an unset filter and an empty one share a cache entry.
func NewKey(resource string, params url.Values) Key {
	clean := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			if v != "" {
				clean.Add(k, v)
			}
		}
	}
	// url.Values.Encode sorts by key.
	return Key{Resource: resource, Params: clean.Encode()}
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Resource
	}
	return k.Resource + "?" + k.Params
}

// HasPrefix reports whether the key belongs to the resource named prefix,
// either exactly or as a "/" or ":" separated child. "admin-users" matches
// "admin-users" and "admin-users/export" but not "admin-users-archive".
func (k Key) HasPrefix(prefix string) bool {
	if !strings.HasPrefix(k.Resource, prefix) {
		return false
	}
	rest := k.Resource[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, ":")
}
