package party

import "strings"

// Canonical lists the seven party keys every structured result must carry,
// in fixed reconciliation order.
var Canonical = []string{"afd", "bsw", "cdu_csu", "linke", "fdp", "gruene", "spd"}

// aliases maps slugged official party names to canonical keys. Kept as data
// so new parties or alternate spellings are additions, not logic changes.
var aliases = map[string]string{
	"alternative_für_deutschland":              "afd",
	"bündnis_sahra_wagenknecht":                "bsw",
	"cdu_csu":                                  "cdu_csu",
	"die_linke":                                "linke",
	"freie_demokratische_partei":               "fdp",
	"bündnis_90_die_grünen":                    "gruene",
	"sozialdemokratische_partei_deutschlands":  "spd",
}

// ProgramURLs holds direct links to the official Wahlprograms, keyed by
// canonical party.
var ProgramURLs = map[string]string{
	"cdu_csu": "https://www.cdu.de/app/uploads/2025/01/km_btw_2025_wahlprogramm_langfassung_ansicht.pdf",
	"spd":     "https://www.spd.de/fileadmin/Dokumente/Beschluesse/Programm/SPD_Programm_bf.pdf",
	"fdp":     "https://www.fdp.de/sites/default/files/2024-12/fdp-wahlprogramm_2025.pdf",
	"gruene":  "https://cms.gruene.de/uploads/assets/Regierungsprogramm_DIGITAL_DINA5.pdf",
	"linke":   "https://www.die-linke.de/fileadmin/user_upload/Wahlprogramm_Langfassung_Linke-BTW25_01.pdf",
	"afd":     "https://www.afd.de/wp-content/uploads/2025/02/AfD_Bundestagswahlprogramm2025_web.pdf",
	"bsw":     "https://bsw-vg.de/wp-content/themes/bsw/assets/downloads/BSW%20Wahlprogramm%202025.pdf",
}

// Normalize reduces a party display name to its canonical key. Names without
// a canonical mapping pass through as their own slug unchanged, so they never
// match a canonical bucket downstream.
func Normalize(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = strings.ReplaceAll(slug, "/", "_")
	if key, ok := aliases[slug]; ok {
		return key
	}
	return slug
}

// IsCanonical reports whether key is one of the seven canonical party keys.
func IsCanonical(key string) bool {
	for _, k := range Canonical {
		if k == key {
			return true
		}
	}
	return false
}

// ProgramURL returns the official Wahlprogram link for a canonical party,
// or "#" when none is known.
func ProgramURL(key string) string {
	if url, ok := ProgramURLs[key]; ok {
		return url
	}
	return "#"
}
