// Package nba provides the league-side data feeds: team resolution, the
// scoreboard and injury clients, slate construction and lineup confirmation.
package nba

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// teamAbbr maps canonical franchise names to tricodes.
var teamAbbr = map[string]string{
	"atlanta hawks":          "ATL",
	"boston celtics":         "BOS",
	"brooklyn nets":          "BKN",
	"charlotte hornets":      "CHA",
	"chicago bulls":          "CHI",
	"cleveland cavaliers":    "CLE",
	"dallas mavericks":       "DAL",
	"denver nuggets":         "DEN",
	"detroit pistons":        "DET",
	"golden state warriors":  "GSW",
	"houston rockets":        "HOU",
	"indiana pacers":         "IND",
	"los angeles clippers":   "LAC",
	"la clippers":            "LAC",
	"los angeles lakers":     "LAL",
	"la lakers":              "LAL",
	"memphis grizzlies":      "MEM",
	"miami heat":             "MIA",
	"milwaukee bucks":        "MIL",
	"minnesota timberwolves": "MIN",
	"new orleans pelicans":   "NOP",
	"new york knicks":        "NYK",
	"oklahoma city thunder":  "OKC",
	"orlando magic":          "ORL",
	"philadelphia 76ers":     "PHI",
	"phoenix suns":           "PHX",
	"portland trail blazers": "POR",
	"sacramento kings":       "SAC",
	"san antonio spurs":      "SAS",
	"toronto raptors":        "TOR",
	"utah jazz":              "UTA",
	"washington wizards":     "WAS",
}

// teamAliases maps nicknames to canonical names.
var teamAliases = map[string]string{
	"lakers":       "los angeles lakers",
	"warriors":     "golden state warriors",
	"clippers":     "los angeles clippers",
	"knicks":       "new york knicks",
	"pelicans":     "new orleans pelicans",
	"spurs":        "san antonio spurs",
	"suns":         "phoenix suns",
	"bucks":        "milwaukee bucks",
	"celtics":      "boston celtics",
	"nets":         "brooklyn nets",
	"heat":         "miami heat",
	"bulls":        "chicago bulls",
	"nuggets":      "denver nuggets",
	"mavericks":    "dallas mavericks",
	"timberwolves": "minnesota timberwolves",
	"wolves":       "minnesota timberwolves",
	"thunder":      "oklahoma city thunder",
	"raptors":      "toronto raptors",
	"jazz":         "utah jazz",
	"kings":        "sacramento kings",
	"grizzlies":    "memphis grizzlies",
	"rockets":      "houston rockets",
	"pacers":       "indiana pacers",
	"pistons":      "detroit pistons",
	"magic":        "orlando magic",
	"sixers":       "philadelphia 76ers",
	"76ers":        "philadelphia 76ers",
	"wizards":      "washington wizards",
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9 ]`)

// stripAccents drops combining marks so feed spellings like "Dončić" and
// "Doncic" canonicalize identically.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canon lowercases a name and strips accents and punctuation.
func Canon(name string) string {
	clean, _, err := transform.String(stripAccents, name)
	if err != nil {
		clean = name
	}
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(clean), ""))
}

// Resolver maps free-form team names to tricodes. Zero value is ready to use.
type Resolver struct{}

// Abbr resolves a name through direct, alias and substring matching.
func (Resolver) Abbr(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	clean := Canon(name)

	if abbr, ok := teamAbbr[clean]; ok {
		return abbr, true
	}
	if canonical, ok := teamAliases[clean]; ok {
		return teamAbbr[canonical], true
	}

	// Substring fallback catches feed spellings like "Boston Celtics (BOS)".
	for key, abbr := range teamAbbr {
		if strings.Contains(key, clean) || strings.Contains(clean, key) {
			return abbr, true
		}
	}
	return "", false
}

// Coord is an arena location.
type Coord struct {
	Lat float64
	Lon float64
}

// teamCoords holds arena coordinates for travel distances.
var teamCoords = map[string]Coord{
	"ATL": {33.7573, -84.3963},
	"BOS": {42.3662, -71.0621},
	"BKN": {40.6826, -73.9754},
	"CHA": {35.2251, -80.8392},
	"CHI": {41.8807, -87.6742},
	"CLE": {41.4965, -81.6882},
	"DAL": {32.7905, -96.8104},
	"DEN": {39.7487, -105.0077},
	"DET": {42.3411, -83.0553},
	"GSW": {37.7680, -122.3877},
	"HOU": {29.7508, -95.3621},
	"IND": {39.7639, -86.1555},
	"LAC": {34.0430, -118.2673},
	"LAL": {34.0430, -118.2673},
	"MEM": {35.1382, -90.0506},
	"MIA": {25.7814, -80.1870},
	"MIL": {43.0451, -87.9180},
	"MIN": {44.9795, -93.2760},
	"NOP": {29.9489, -90.0819},
	"NYK": {40.7505, -73.9934},
	"OKC": {35.4634, -97.5151},
	"ORL": {28.5392, -81.3839},
	"PHI": {39.9012, -75.1720},
	"PHX": {33.4457, -112.0712},
	"POR": {45.5316, -122.6668},
	"SAC": {38.5802, -121.4997},
	"SAS": {29.4269, -98.4375},
	"TOR": {43.6435, -79.3791},
	"UTA": {40.7683, -111.9011},
	"WAS": {38.8981, -77.0209},
}

// TravelKm returns the great-circle distance from the away arena to the home
// arena, or 0 when either tricode is unknown.
func TravelKm(awayAbbr, homeAbbr string) float64 {
	from, okF := teamCoords[awayAbbr]
	to, okT := teamCoords[homeAbbr]
	if !okF || !okT {
		return 0
	}
	return haversineKm(from, to)
}

func haversineKm(a, b Coord) float64 {
	const earthRadiusKm = 6371
	dlat := radians(b.Lat - a.Lat)
	dlon := radians(b.Lon - a.Lon)
	h := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Pow(math.Sin(dlon/2), 2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
