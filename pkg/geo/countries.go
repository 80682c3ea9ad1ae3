// Package geo provides the country and region option lists used by country
// and region fields, and an IP based country locator for autofill.
package geo

import (
	"sort"
	"strings"
)

// Country is a selectable country. Code is the stored answer.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var countryCodes = []string{
	"DE", "AT", "CH", "FR", "IT", "ES", "UK", "US", "CA", "NL",
	"BE", "LU", "DK", "NO", "SE", "FI", "PL", "CZ", "HU", "PT",
	"GR", "IE", "JP", "CN", "IN", "AU", "NZ", "KR",
}

var countryNames = map[string][]string{
	"de": {
		"Deutschland", "Österreich", "Schweiz", "Frankreich", "Italien", "Spanien",
		"Vereinigtes Königreich", "Vereinigte Staaten", "Kanada", "Niederlande",
		"Belgien", "Luxemburg", "Dänemark", "Norwegen", "Schweden", "Finnland",
		"Polen", "Tschechien", "Ungarn", "Portugal", "Griechenland", "Irland",
		"Japan", "China", "Indien", "Australien", "Neuseeland", "Südkorea",
	},
	"en": {
		"Germany", "Austria", "Switzerland", "France", "Italy", "Spain",
		"United Kingdom", "United States", "Canada", "Netherlands",
		"Belgium", "Luxembourg", "Denmark", "Norway", "Sweden", "Finland",
		"Poland", "Czech Republic", "Hungary", "Portugal", "Greece", "Ireland",
		"Japan", "China", "India", "Australia", "New Zealand", "South Korea",
	},
}

// codeAliases maps ISO 3166 codes onto the codes used by the option lists.
var codeAliases = map[string]string{
	"GB": "UK",
}

// NormalizeCode upper-cases code and applies aliases ("gb" becomes "UK").
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if alias, ok := codeAliases[code]; ok {
		return alias
	}
	return code
}

// Countries returns the country list for lang, falling back to fallback and
// then to English.
func Countries(lang, fallback string) []Country {
	names, ok := countryNames[strings.ToLower(lang)]
	if !ok {
		names, ok = countryNames[strings.ToLower(fallback)]
	}
	if !ok {
		names = countryNames["en"]
	}
	out := make([]Country, len(countryCodes))
	for i, code := range countryCodes {
		out[i] = Country{Code: code, Name: names[i]}
	}
	return out
}

// FindCountry looks up code in the list for lang.
func FindCountry(lang, code string) (Country, bool) {
	code = NormalizeCode(code)
	for _, c := range Countries(lang, "en") {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// Languages lists the languages with a country list.
func Languages() []string {
	out := make([]string, 0, len(countryNames))
	for lang := range countryNames {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
