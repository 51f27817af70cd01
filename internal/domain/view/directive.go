package view

import (
	"regexp"
	"strconv"
)

// directivePattern matches @module(position) with the position optionally
// quoted. A leading @@ escapes the directive.
var directivePattern = regexp.MustCompile(`@?@module\(\s*['"]?([^'"()\s]+)['"]?\s*\)`)

// ExpandDirectives rewrites every @module('position') in src into a
// template action that renders the position. @module("position") and
// @module(position) are accepted too. @@module(...) is emitted literally
// without its first @.
func ExpandDirectives(src string) string {
	return directivePattern.ReplaceAllStringFunc(src, func(match string) string {
		if match[1] == '@' {
			return match[1:]
		}
		position := directivePattern.FindStringSubmatch(match)[1]
		return "{{ module " + strconv.Quote(position) + " }}"
	})
}
