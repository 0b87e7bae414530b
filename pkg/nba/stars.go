package nba

// StarTier classifies a roster anchor for injury impact.
type StarTier int

const (
	StarNone StarTier = iota
	StarTier1         // half-court anchors
	StarTier2         // flow and secondary engines
)

var tier1Stars = map[string]string{
	"ATL": "Kristaps Porzingis",
	"BOS": "Jayson Tatum",
	"BKN": "Cam Thomas",
	"CHA": "LaMelo Ball",
	"CHI": "Nikola Vucevic",
	"CLE": "Donovan Mitchell",
	"DAL": "Anthony Davis",
	"DEN": "Nikola Jokic",
	"DET": "Cade Cunningham",
	"GSW": "Stephen Curry",
	"HOU": "Alperen Sengun",
	"IND": "Tyrese Haliburton",
	"LAC": "Kawhi Leonard",
	"LAL": "LeBron James",
	"MEM": "Ja Morant",
	"MIA": "Bam Adebayo",
	"MIL": "Giannis Antetokounmpo",
	"MIN": "Anthony Edwards",
	"NOP": "Zion Williamson",
	"NYK": "Jalen Brunson",
	"OKC": "Shai Gilgeous-Alexander",
	"ORL": "Paolo Banchero",
	"PHI": "Joel Embiid",
	"PHX": "Devin Booker",
	"POR": "Damian Lillard",
	"SAC": "Domantas Sabonis",
	"SAS": "Victor Wembanyama",
	"TOR": "Scottie Barnes",
	"UTA": "Lauri Markkanen",
	"WAS": "Trae Young",
}

var tier2Stars = map[string]string{
	"ATL": "CJ McCollum",
	"BOS": "Jaylen Brown",
	"CHA": "Brandon Miller",
	"CHI": "Zach LaVine",
	"CLE": "Darius Garland",
	"DEN": "Jamal Murray",
	"DET": "Jaden Ivey",
	"GSW": "Jimmy Butler III",
	"HOU": "Kevin Durant",
	"IND": "Pascal Siakam",
	"LAC": "James Harden",
	"LAL": "Luka Doncic",
	"MEM": "Jaren Jackson Jr.",
	"MIA": "Tyler Herro",
	"MIL": "Kyle Kuzma",
	"NOP": "Dejounte Murray",
	"NYK": "Karl-Anthony Towns",
	"OKC": "Jalen Williams",
	"ORL": "Franz Wagner",
	"PHI": "Tyrese Maxey",
	"POR": "Anfernee Simons",
	"SAC": "DeMar DeRozan",
	"SAS": "De'Aaron Fox",
	"TOR": "Brandon Ingram",
	"WAS": "Jordan Poole",
}

// Defensive anchors are tracked separately from the offensive tiers: losing
// one moves totals and spread variance, not the scoring mean.
var defTier1Anchors = map[string]string{
	"BOS": "Derrick White",
	"CLE": "Evan Mobley",
	"DAL": "Dereck Lively II",
	"DEN": "Aaron Gordon",
	"GSW": "Draymond Green",
	"HOU": "Amen Thompson",
	"MEM": "Jaren Jackson Jr.",
	"MIA": "Bam Adebayo",
	"MIL": "Brook Lopez",
	"MIN": "Rudy Gobert",
	"NOP": "Herbert Jones",
	"NYK": "Mitchell Robinson",
	"OKC": "Chet Holmgren",
	"ORL": "Jalen Suggs",
	"PHI": "Joel Embiid",
	"SAS": "Victor Wembanyama",
	"TOR": "Jakob Poeltl",
	"UTA": "Walker Kessler",
}

var defTier2Anchors = map[string]string{
	"ATL": "Dyson Daniels",
	"BKN": "Nic Claxton",
	"CHA": "Mark Williams",
	"CHI": "Alex Caruso",
	"DET": "Ausar Thompson",
	"IND": "Myles Turner",
	"LAC": "Ivica Zubac",
	"LAL": "Jarred Vanderbilt",
	"OKC": "Luguentz Dort",
	"PHX": "Ryan Dunn",
	"POR": "Toumani Camara",
	"SAC": "Keon Ellis",
	"WAS": "Alex Sarr",
}

// starTiers is keyed by team tricode, then canonical player name.
var starTiers = buildStarTiers()

func buildStarTiers() map[string]map[string]StarTier {
	out := make(map[string]map[string]StarTier)
	add := func(team, player string, tier StarTier) {
		if out[team] == nil {
			out[team] = make(map[string]StarTier)
		}
		out[team][Canon(player)] = tier
	}
	for team, player := range tier1Stars {
		add(team, player, StarTier1)
	}
	for team, player := range tier2Stars {
		add(team, player, StarTier2)
	}
	return out
}

var defTiers = buildDefTiers()

func buildDefTiers() map[string]map[string]StarTier {
	out := make(map[string]map[string]StarTier)
	add := func(team, player string, tier StarTier) {
		if out[team] == nil {
			out[team] = make(map[string]StarTier)
		}
		out[team][Canon(player)] = tier
	}
	for team, player := range defTier1Anchors {
		add(team, player, StarTier1)
	}
	for team, player := range defTier2Anchors {
		add(team, player, StarTier2)
	}
	return out
}

// TierOf returns the offensive star tier of a player on a team, or StarNone.
func TierOf(teamAbbr, playerName string) StarTier {
	return starTiers[teamAbbr][Canon(playerName)]
}

// DefTierOf returns the defensive anchor tier of a player, or StarNone.
func DefTierOf(teamAbbr, playerName string) StarTier {
	return defTiers[teamAbbr][Canon(playerName)]
}
