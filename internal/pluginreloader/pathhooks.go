package pluginreloader

import (
	"strings"

	"github.com/nyxaria/kmfetch/internal/pathengine"
)

// rewriteRule is a simple find/replace transform applied to one named
// field of an ArtistParams/PostParams/FileParams value. This is the
// "named variable" a plugin source file defines — not compiled code, but
// enough to express the path-rewrite hooks PathEngine calls out for
// without an in-process script interpreter.
type rewriteRule struct {
	Field string `json:"field"`
	Find  string `json:"find"`
	Replace string `json:"replace"`
}

func applyRule(rule rewriteRule, value string) string {
	if rule.Find == "" {
		return value
	}
	return strings.ReplaceAll(value, rule.Find, rule.Replace)
}

// HookNames names the three plugin entries PathEngine looks for.
type HookNames struct {
	Artist string
	Post   string
	File   string
}

// DefaultHookNames is the conventional entry-name set PathEngine wires by
// default ("rewrite_artist", "rewrite_post", "rewrite_file").
var DefaultHookNames = HookNames{Artist: "rewrite_artist", Post: "rewrite_post", File: "rewrite_file"}

// WireHooks returns a pathengine.Hooks whose functions re-read loader's
// source file on every call — a lookup miss or malformed entry leaves the
// corresponding param untouched rather than failing the render.
func WireHooks(loader *Loader, names HookNames) pathengine.Hooks {
	return pathengine.Hooks{
		RewriteArtist: func(p pathengine.ArtistParams) pathengine.ArtistParams {
			var rule rewriteRule
			if err := loader.LookupInto(names.Artist, &rule); err != nil {
				return p
			}
			switch rule.Field {
			case "name":
				p.Name = applyRule(rule, p.Name)
			case "alias":
				p.Alias = applyRule(rule, p.Alias)
			case "service":
				p.Service = applyRule(rule, p.Service)
			}
			return p
		},
		RewritePost: func(p pathengine.PostParams) pathengine.PostParams {
			var rule rewriteRule
			if err := loader.LookupInto(names.Post, &rule); err != nil {
				return p
			}
			switch rule.Field {
			case "title":
				p.Title = applyRule(rule, p.Title)
			case "user":
				p.User = applyRule(rule, p.User)
			}
			return p
		},
		RewriteFile: func(p pathengine.FileParams) pathengine.FileParams {
			var rule rewriteRule
			if err := loader.LookupInto(names.File, &rule); err != nil {
				return p
			}
			switch rule.Field {
			case "name":
				p.Name = applyRule(rule, p.Name)
			case "filename":
				p.Filename = applyRule(rule, p.Filename)
			}
			return p
		},
	}
}
