package search

import (
	"fmt"
	"strings"
)

// Request describes a search against one index
type Request struct {
	Index       string
	Query       string
	Status      string // properties only
	State       string // properties only
	ContactType string // contacts only
	Limit       int64
	Offset      int64
}

func (r Request) normalize() Request {
	if r.Index == "" {
		r.Index = IndexProperties
	}
	if r.Limit <= 0 || r.Limit > 100 {
		r.Limit = 20
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	return r
}

// filter builds the Meilisearch filter expression for the request
func (r Request) filter() string {
	var filters []string

	switch r.Index {
	case IndexProperties:
		if r.Status != "" {
			filters = append(filters, equals("status", r.Status))
		}
		if r.State != "" {
			filters = append(filters, equals("state", r.State))
		}
	case IndexContacts:
		if r.ContactType != "" {
			filters = append(filters, equals("contact_type", r.ContactType))
		}
	}

	return strings.Join(filters, " AND ")
}

func equals(attribute, value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return fmt.Sprintf(`%s = "%s"`, attribute, escaped)
}
