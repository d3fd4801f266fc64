package model

import (
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

// Humanize turns a field name such as "first_name" or "firstName" into
// "First Name". It is used when a descriptor omits its label.
func Humanize(name string) string {
	if name == "" {
		return ""
	}

	words := strings.Fields(strcase.ToDelimited(name, ' '))
	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}

func capitalize(word string) string {
	runes := []rune(word)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
