package world

import (
	"github.com/talgya/civic-sim/internal/politics"
)

// Country supplies the base parties and electoral systems for its
// jurisdictions. System names match the election type table.
type Country struct {
	ID                string                   `json:"id"`
	Name              string                   `json:"name"`
	Currency          string                   `json:"currency"`
	MayorSystem       string                   `json:"mayorSystem"`
	CouncilSystem     string                   `json:"councilSystem"`
	CouncilSeats      int                      `json:"councilSeats"`
	LegislatureSystem string                   `json:"legislatureSystem"`
	LegislatureSeats  int                      `json:"legislatureSeats"`
	BaseParties       []politics.PartyTemplate `json:"baseParties"`
}

// Countries is the built-in country table.
var Countries = []Country{
	{
		ID: "USA", Name: "United States", Currency: "USD",
		MayorSystem: "FPTP", CouncilSystem: "BlockVote", CouncilSeats: 7,
		LegislatureSystem: "FPTP", LegislatureSeats: 1,
		BaseParties: []politics.PartyTemplate{
			{ID: "dem", Name: "Democratic Party", IdeologyID: "liberal", Major: true},
			{ID: "gop", Name: "Republican Party", IdeologyID: "conservative", Major: true},
			{ID: "lib", Name: "Libertarian Party", IdeologyID: "libertarian"},
			{ID: "grn", Name: "Green Party", IdeologyID: "green"},
		},
	},
	{
		ID: "GBR", Name: "United Kingdom", Currency: "GBP",
		MayorSystem: "FPTP", CouncilSystem: "PluralityMMD", CouncilSeats: 9,
		LegislatureSystem: "FPTP", LegislatureSeats: 1,
		BaseParties: []politics.PartyTemplate{
			{ID: "lab", Name: "Labour", IdeologyID: "social_democrat", Major: true},
			{ID: "con", Name: "Conservatives", IdeologyID: "conservative", Major: true},
			{ID: "ld", Name: "Liberal Democrats", IdeologyID: "liberal"},
			{ID: "ref", Name: "Reform", IdeologyID: "populist"},
			{ID: "grn", Name: "Greens", IdeologyID: "green"},
		},
	},
	{
		ID: "DEU", Name: "Germany", Currency: "EUR",
		MayorSystem: "TwoRoundSystem", CouncilSystem: "MMP", CouncilSeats: 20,
		LegislatureSystem: "MMP", LegislatureSeats: 40,
		BaseParties: []politics.PartyTemplate{
			{ID: "cdu", Name: "Christian Democrats", IdeologyID: "conservative", Major: true},
			{ID: "spd", Name: "Social Democrats", IdeologyID: "social_democrat", Major: true},
			{ID: "gru", Name: "Greens", IdeologyID: "green"},
			{ID: "fdp", Name: "Free Democrats", IdeologyID: "libertarian"},
			{ID: "lnk", Name: "The Left", IdeologyID: "socialist"},
			{ID: "afd", Name: "Alternative", IdeologyID: "nationalist"},
		},
	},
	{
		ID: "NLD", Name: "Netherlands", Currency: "EUR",
		MayorSystem: "FPTP", CouncilSystem: "PartyListPR", CouncilSeats: 15,
		LegislatureSystem: "PartyListPR", LegislatureSeats: 30,
		BaseParties: []politics.PartyTemplate{
			{ID: "vvd", Name: "People's Party", IdeologyID: "liberal", Major: true},
			{ID: "pvda", Name: "Labour-Green Alliance", IdeologyID: "social_democrat", Major: true},
			{ID: "cda", Name: "Christian Democratic Appeal", IdeologyID: "centrist"},
			{ID: "sp", Name: "Socialist Party", IdeologyID: "socialist"},
			{ID: "pvv", Name: "Party for Freedom", IdeologyID: "nationalist"},
			{ID: "d66", Name: "Democrats 66", IdeologyID: "progressive"},
		},
	},
	{
		ID: "JPN", Name: "Japan", Currency: "JPY",
		MayorSystem: "FPTP", CouncilSystem: "SNTV_MMD", CouncilSeats: 10,
		LegislatureSystem: "SNTV_MMD", LegislatureSeats: 12,
		BaseParties: []politics.PartyTemplate{
			{ID: "ldp", Name: "Liberal Democratic Party", IdeologyID: "conservative", Major: true},
			{ID: "cdp", Name: "Constitutional Democrats", IdeologyID: "liberal", Major: true},
			{ID: "kmt", Name: "Komeito", IdeologyID: "centrist"},
			{ID: "jcp", Name: "Communist Party", IdeologyID: "socialist"},
		},
	},
	{
		ID: "FRA", Name: "France", Currency: "EUR",
		MayorSystem: "TwoRoundSystem", CouncilSystem: "PartyListPR", CouncilSeats: 15,
		LegislatureSystem: "TwoRoundSystem", LegislatureSeats: 1,
		BaseParties: []politics.PartyTemplate{
			{ID: "ren", Name: "Renaissance", IdeologyID: "centrist", Major: true},
			{ID: "rn", Name: "National Rally", IdeologyID: "nationalist", Major: true},
			{ID: "lfi", Name: "France Unbowed", IdeologyID: "socialist"},
			{ID: "lr", Name: "The Republicans", IdeologyID: "conservative"},
			{ID: "eelv", Name: "Ecologists", IdeologyID: "green"},
		},
	},
}

// CountryByID looks a country up, falling back to the first entry.
func CountryByID(id string) Country {
	for _, c := range Countries {
		if c.ID == id {
			return c
		}
	}
	return Countries[0]
}
