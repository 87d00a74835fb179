// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package citation

import "strings"

// Tokenize splits a raw reference blob into individual citation strings.
//
// Segments are split on semicolons and line breaks, trimmed of surrounding
// whitespace, and empty segments are dropped. Source order is preserved;
// the caller assigns seq 1..n over the result.
func Tokenize(raw string) []string {
	segments := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == '\n' || r == '\r'
	})

	tokens := make([]string, 0, len(segments))
	for _, segment := range segments {
		if token := strings.TrimSpace(segment); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
