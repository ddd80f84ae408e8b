package languages

import "sort"

// Language is a profile/interface language offered on the platform.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var profileLanguageMap = map[string]string{
	"ar": "Arabic",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"hi": "Hindi",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"tr": "Turkish",
	"zh": "Chinese",
}

func IsSupported(code string) bool {
	_, ok := profileLanguageMap[code]
	return ok
}

// All lists the supported languages by English name, for the profile form's
// language picker.
func All() []Language {
	langs := make([]Language, 0, len(profileLanguageMap))
	for code, name := range profileLanguageMap {
		langs = append(langs, Language{Code: code, Name: name})
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].Name < langs[j].Name })
	return langs
}
