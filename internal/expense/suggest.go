package expense

import "strings"

// DefaultSuggestion is returned when no keyword matches.
const DefaultSuggestion = "Altro"

// SuggestCategory guesses a default category name from an expense
// description. Whole-description matches win over keyword matches.
func SuggestCategory(description string) string {
	d := strings.ToLower(strings.TrimSpace(description))
	if d == "" {
		return DefaultSuggestion
	}
	if cat, ok := exactSuggestions[d]; ok {
		return cat
	}
	for _, k := range keywordSuggestions {
		if strings.Contains(d, k.keyword) {
			return k.category
		}
	}
	return DefaultSuggestion
}

var exactSuggestions = map[string]string{
	"spesa":        "Spesa",
	"supermercato": "Spesa",
	"mercato":      "Spesa",
	"pane":         "Spesa",
	"latte":        "Spesa",
	"frutta":       "Spesa",
	"verdura":      "Spesa",
	"affitto":      "Casa",
	"mobili":       "Casa",
	"pulizie":      "Casa",
	"luce":         "Bollette",
	"gas":          "Bollette",
	"acqua":        "Bollette",
	"internet":     "Bollette",
	"telefono":     "Bollette",
	"benzina":      "Trasporti",
	"diesel":       "Trasporti",
	"treno":        "Trasporti",
	"bus":          "Trasporti",
	"taxi":         "Trasporti",
	"cinema":       "Svago",
	"pizza":        "Svago",
	"cena":         "Svago",
	"farmacia":     "Salute",
	"medico":       "Salute",
	"dentista":     "Salute",
}

type keywordSuggestion struct {
	keyword  string
	category string
}

// Longer and more specific keywords come first.
var keywordSuggestions = []keywordSuggestion{
	{"supermercato", "Spesa"},
	{"esselunga", "Spesa"},
	{"conad", "Spesa"},
	{"coop", "Spesa"},
	{"lidl", "Spesa"},
	{"carrefour", "Spesa"},
	{"alimentari", "Spesa"},
	{"macelleria", "Spesa"},
	{"panetteria", "Spesa"},
	{"condominio", "Casa"},
	{"affitto", "Casa"},
	{"ikea", "Casa"},
	{"ferramenta", "Casa"},
	{"detersivi", "Casa"},
	{"elettricità", "Bollette"},
	{"bollett", "Bollette"},
	{"enel", "Bollette"},
	{"fibra", "Bollette"},
	{"luce", "Bollette"},
	{"gas", "Bollette"},
	{"carburante", "Trasporti"},
	{"benzina", "Trasporti"},
	{"autostrada", "Trasporti"},
	{"parcheggio", "Trasporti"},
	{"biglietto", "Trasporti"},
	{"treno", "Trasporti"},
	{"metro", "Trasporti"},
	{"ristorante", "Svago"},
	{"pizzeria", "Svago"},
	{"netflix", "Svago"},
	{"spotify", "Svago"},
	{"concerto", "Svago"},
	{"cinema", "Svago"},
	{"aperitivo", "Svago"},
	{"farmacia", "Salute"},
	{"medicine", "Salute"},
	{"visita", "Salute"},
	{"palestra", "Salute"},
	{"dentista", "Salute"},
}
