package locale

import (
	"golang.org/x/text/language"
)

// Supported languages, in matcher preference order
const (
	English = "en"
	Arabic  = "ar"
)

var (
	supported = []language.Tag{language.English, language.Arabic}
	matcher   = language.NewMatcher(supported)
)

// Negotiate picks a supported language from an explicit choice (for example a
// ?lang= parameter) or an Accept-Language header, falling back to fallback.
func Negotiate(explicit, acceptLanguage, fallback string) string {
	for _, candidate := range []string{explicit, acceptLanguage} {
		if candidate == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(candidate)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, confidence := matcher.Match(tags...)
		if confidence == language.No {
			continue
		}
		return base(supported[idx])
	}
	return Normalize(fallback)
}

// Normalize returns the supported language code for lang, or English.
func Normalize(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return English
	}
	_, idx, confidence := matcher.Match(tag)
	if confidence == language.No {
		return English
	}
	return base(supported[idx])
}

func base(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}
