package geo

var regionData = map[string][]string{
	"DE": {
		"Baden-Württemberg", "Bayern", "Berlin", "Brandenburg", "Bremen",
		"Hamburg", "Hessen", "Mecklenburg-Vorpommern", "Niedersachsen",
		"Nordrhein-Westfalen", "Rheinland-Pfalz", "Saarland", "Sachsen",
		"Sachsen-Anhalt", "Schleswig-Holstein", "Thüringen",
	},
	"AT": {
		"Burgenland", "Kärnten", "Niederösterreich", "Oberösterreich",
		"Salzburg", "Steiermark", "Tirol", "Vorarlberg", "Wien",
	},
	"IT": {
		"Abruzzen", "Aostatal", "Apulien", "Basilikata", "Emilia-Romagna",
		"Friaul-Julisch Venetien", "Kalabrien", "Kampanien", "Korsika",
		"Latium", "Ligurien", "Lombardei", "Marken", "Molise",
		"Piemont", "Sardinien", "Sizilien", "Toskana", "Trentino-Südtirol",
		"Umbrien", "Venetien",
	},
	"US": {
		"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado",
		"Connecticut", "Delaware", "Florida", "Georgia", "Hawaii", "Idaho",
		"Illinois", "Indiana", "Iowa", "Kansas", "Kentucky", "Louisiana",
		"Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota",
		"Mississippi", "Missouri", "Montana", "Nebraska", "Nevada",
		"New Hampshire", "New Jersey", "New Mexico", "New York",
		"North Carolina", "North Dakota", "Ohio", "Oklahoma", "Oregon",
		"Pennsylvania", "Rhode Island", "South Carolina", "South Dakota",
		"Tennessee", "Texas", "Utah", "Vermont", "Virginia", "Washington",
		"West Virginia", "Wisconsin", "Wyoming",
	},
	"UK": {
		"England", "Schottland", "Wales", "Nordirland",
	},
}

// Regions returns the regions of the country with code, or nil when none
// are defined.
func Regions(code string) []string {
	regions, ok := regionData[NormalizeCode(code)]
	if !ok {
		return nil
	}
	return append([]string(nil), regions...)
}

// HasRegions reports whether regions are defined for code.
func HasRegions(code string) bool {
	_, ok := regionData[NormalizeCode(code)]
	return ok
}
