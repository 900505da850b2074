package configs

import (
	"net/url"
	"strings"
)

// Rule names.
const (
	RuleLoad            = "load"
	RuleLoadFilter      = "load_filter"
	RuleLoadDelete      = "load_delete"
	RuleLoadConfigs     = "load_configs"
	RuleLoadNewConfigs  = "load_new_configs"
	RuleLoadEditConfigs = "load_edit_configs"
)

// Rule is a named page route. Pattern uses chi/net/http wildcards; Path
// fills them from Args.
type Rule struct {
	Name    string
	Pattern string
}

// Args carries the route arguments. Name and Type are the listing filter and
// always travel as query parameters.
type Args struct {
	ID   string
	Name string
	Type string
}

// Rules lists every page route under base ("/configs" by default).
func Rules(base string) []Rule {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = "/configs"
	}
	return []Rule{
		{Name: RuleLoad, Pattern: base},
		{Name: RuleLoadFilter, Pattern: base + "/filter"},
		{Name: RuleLoadDelete, Pattern: base + "/deleted"},
		{Name: RuleLoadConfigs, Pattern: base + "/{id}"},
		{Name: RuleLoadNewConfigs, Pattern: base + "/{id}/new"},
		{Name: RuleLoadEditConfigs, Pattern: base + "/{id}/edit"},
	}
}

// RuleByName finds a rule in rules.
func RuleByName(rules []Rule, name string) (Rule, bool) {
	for _, r := range rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// Path builds the URL of r for args. The filter rule keeps the id as a query
// parameter since its pattern has no id segment.
func (r Rule) Path(args Args) string {
	path := r.Pattern
	query := url.Values{}
	if strings.Contains(path, "{id}") {
		path = strings.ReplaceAll(path, "{id}", url.PathEscape(args.ID))
	} else if args.ID != "" && r.Name == RuleLoadFilter {
		query.Set("id", args.ID)
	}
	if args.Name != "" {
		query.Set("name", args.Name)
	}
	if args.Type != "" {
		query.Set("type", args.Type)
	}
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// Redirect resolves the follow-up route of a transitional rule: filter goes
// to the details page when an id is set and to the listing otherwise, delete
// goes to the listing keeping only the name filter, new and edit go to the
// details page. Other rules are not transitional.
func Redirect(rules []Rule, name string, args Args) (string, bool) {
	target := ""
	switch name {
	case RuleLoadFilter:
		target = RuleLoad
		if args.ID != "" {
			target = RuleLoadConfigs
		}
	case RuleLoadDelete:
		args = Args{Name: args.Name}
		target = RuleLoad
	case RuleLoadNewConfigs, RuleLoadEditConfigs:
		target = RuleLoadConfigs
	default:
		return "", false
	}
	rule, ok := RuleByName(rules, target)
	if !ok {
		return "", false
	}
	return rule.Path(args), true
}
