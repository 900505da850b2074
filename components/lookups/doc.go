// Package lookups provides the option lists behind the editor's selectors
// (portfolios, security types, value requirement names), search helpers and
// a small net/http handler that returns them as JSON.
//
// The handler responds to GET and HEAD requests on
// {RoutePath}/{resource} and supports query and limit parameters. Built-in
// lists are loaded from the embedded files under data/.
package lookups
