// Package upgrade implements the format upgraders (C3) of spec.md §4.3:
// pure, best-effort functions that mutate a raw YAML dict from one minor
// version to the next, chained until the target minor is reached.
package upgrade

import "strings"

// Dict is the raw YAML mapping shape produced by gopkg.in/yaml.v3 when
// unmarshaling into `any` (string keys, unlike yaml.v2's
// map[interface{}]interface{}).
type Dict = map[string]any

var doiPrefixes = []string{"https://doi.org/", "http://dx.doi.org/", "doi.org/"}

// stripDOIPrefix removes a known DOI URL prefix (spec.md §4.3).
func stripDOIPrefix(s string) string {
	for _, p := range doiPrefixes {
		if strings.HasPrefix(s, p) {
			return strings.TrimPrefix(s, p)
		}
	}
	return s
}

// stripGithubUserPrefix removes a leading "https://github.com/" from a
// github_user field (spec.md §4.3).
func stripGithubUserPrefix(s string) string {
	return strings.TrimPrefix(s, "https://github.com/")
}

// removeSlashes strips '/' characters from person names and the `name`
// field (spec.md §4.3).
func removeSlashes(s string) string {
	return strings.ReplaceAll(s, "/", "")
}

// promoteAuthorStrings turns bare author-string entries into {name: ...}
// objects (spec.md §4.3).
func promoteAuthorStrings(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(list))
	for i, item := range list {
		switch x := item.(type) {
		case string:
			out[i] = Dict{"name": removeSlashes(x)}
		case Dict:
			if name, ok := x["name"].(string); ok {
				x["name"] = removeSlashes(name)
			}
			if gh, ok := x["github_user"].(string); ok {
				x["github_user"] = stripGithubUserPrefix(gh)
			}
			out[i] = x
		default:
			out[i] = item
		}
	}
	return out
}

func normalizeCite(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	for _, item := range list {
		if d, ok := item.(Dict); ok {
			if doi, ok := d["doi"].(string); ok {
				d["doi"] = stripDOIPrefix(doi)
			}
		}
	}
	return list
}

// UpgradeGeneric02To03 applies the generic 0.2 -> 0.3 rules of spec.md §4.3:
// move attachments.files into attachments: [FileDescr{source}], remove
// download_url, promote author/maintainer strings, normalize cite/github.
func UpgradeGeneric02To03(d Dict) Dict {
	if d == nil {
		return d
	}
	if raw, ok := d["attachments"]; ok {
		if am, ok := raw.(Dict); ok {
			if files, ok := am["files"].([]any); ok {
				descrs := make([]any, len(files))
				for i, f := range files {
					descrs[i] = Dict{"source": f}
				}
				d["attachments"] = descrs
			}
		}
	}
	delete(d, "download_url")

	if a, ok := d["authors"]; ok {
		d["authors"] = promoteAuthorStrings(a)
	}
	if m, ok := d["maintainers"]; ok {
		d["maintainers"] = promoteAuthorStrings(m)
	}
	if c, ok := d["cite"]; ok {
		d["cite"] = normalizeCite(c)
	}
	if name, ok := d["name"].(string); ok {
		d["name"] = removeSlashes(name)
	}

	d["format_version"] = "0.3.0"
	return d
}
