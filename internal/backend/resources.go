package backend

import (
	"net/url"
	"strings"
)

// Resource is one backend collection the dashboard exposes.
type Resource struct {
	Name       string
	Label      string
	Path       string
	Exportable bool
}

var Resources = []Resource{
	{Name: "samples", Label: "Samples", Path: "samples", Exportable: true},
	{Name: "boxes", Label: "Boxes", Path: "boxes", Exportable: true},
	{Name: "experiments", Label: "Experiments", Path: "experiments", Exportable: true},
	{Name: "study-ids", Label: "Study IDs", Path: "study-ids"},
	{Name: "users", Label: "Users", Path: "users"},
	{Name: "datasets", Label: "Datasets", Path: "datasets"},
	{Name: "tokens", Label: "Tokens", Path: "tokens"},
	{Name: "sample-types", Label: "Sample types", Path: "sample-types"},
	{Name: "box-types", Label: "Box types", Path: "box-types"},
	{Name: "groups", Label: "Groups", Path: "groups"},
}

func LookupResource(name string) (Resource, bool) {
	for _, r := range Resources {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

func (r Resource) CollectionPath() string {
	return "/" + r.Path + "/"
}

func (r Resource) ItemPath(id string) string {
	return "/" + r.Path + "/" + url.PathEscape(id) + "/"
}

func (r Resource) HistoryPath(id string) string {
	return r.ItemPath(id) + "history/"
}

// queryAliases maps dashboard query names to the backend's.
var queryAliases = map[string]string{
	"pageSize": "page_size",
	"q":        "search",
	"sort":     "ordering",
}

// RewriteQuery copies a client query, renaming dashboard aliases. An explicit
// backend name wins over its alias.
func RewriteQuery(in url.Values) url.Values {
	out := url.Values{}
	for key, values := range in {
		if strings.TrimSpace(key) == "" {
			continue
		}
		if target, ok := queryAliases[key]; ok {
			if _, explicit := in[target]; explicit {
				continue
			}
			key = target
		}
		out[key] = append(out[key], values...)
	}
	return out
}
