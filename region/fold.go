// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents returns a new transformer, chains keep per-call state.
func stripAccents() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
}

// isNameSeparator reports the runes that split the words of a region name.
func isNameSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.'
}

// fold reduces a region name to its lookup key: lowercase, without accents,
// words joined by single spaces. "Ciudad-Vieja", " ciudad  vieja " and
// "Ciudad_Vieja" share a key, as do "Üsküdar" and "uskudar".
func fold(s string) string {
	lower := strings.ToLower(s)
	if folded, _, err := transform.String(stripAccents(), lower); err == nil {
		lower = folded
	}

	return strings.Join(strings.FieldsFunc(lower, isNameSeparator), " ")
}
