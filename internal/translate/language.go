package translate

import "strings"

// DefaultLanguage is the language bills are written in.
const DefaultLanguage = "en"

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"ta": "Tamil",
	"bn": "Bengali",
	"mr": "Marathi",
	"te": "Telugu",
}

// Languages returns the supported language tags.
func Languages() []string {
	return []string{"en", "hi", "ta", "bn", "mr", "te"}
}

// NormalizeLanguage lower-cases tag and reports whether it is supported.
// An empty tag means the default language.
func NormalizeLanguage(tag string) (string, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return DefaultLanguage, true
	}
	_, ok := languageNames[tag]
	return tag, ok
}

// LanguageName returns the English name of a language tag, or the tag itself.
func LanguageName(tag string) string {
	if name, ok := languageNames[tag]; ok {
		return name
	}
	return tag
}
