// Package politics provides parties, politicians, ideologies, policy questions
// and government offices.
package politics

import "math"

// Axes places a party, politician or electorate on the two ideology axes.
// Economic runs -1 (collectivist) to +1 (free market); Social runs
// -1 (progressive) to +1 (traditional).
type Axes struct {
	Economic float64 `json:"economic"`
	Social   float64 `json:"social"`
}

// Distance is the euclidean distance between two positions.
func (a Axes) Distance(b Axes) float64 {
	de := a.Economic - b.Economic
	ds := a.Social - b.Social
	return math.Sqrt(de*de + ds*ds)
}

// Ideology is a named position with a display colour.
type Ideology struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Axes  Axes   `json:"axes"`
}

// Ideologies is the fixed catalogue every party and politician maps onto.
var Ideologies = []Ideology{
	{ID: "conservative", Name: "Conservative", Color: "#1f4e9c", Axes: Axes{Economic: 0.6, Social: 0.6}},
	{ID: "liberal", Name: "Liberal", Color: "#f2b705", Axes: Axes{Economic: 0.3, Social: -0.4}},
	{ID: "progressive", Name: "Progressive", Color: "#8e44ad", Axes: Axes{Economic: -0.5, Social: -0.7}},
	{ID: "social_democrat", Name: "Social Democrat", Color: "#d62828", Axes: Axes{Economic: -0.4, Social: -0.2}},
	{ID: "socialist", Name: "Socialist", Color: "#9b1b30", Axes: Axes{Economic: -0.9, Social: -0.3}},
	{ID: "libertarian", Name: "Libertarian", Color: "#e9c46a", Axes: Axes{Economic: 0.9, Social: -0.6}},
	{ID: "nationalist", Name: "Nationalist", Color: "#3d2b1f", Axes: Axes{Economic: 0.2, Social: 0.9}},
	{ID: "green", Name: "Green", Color: "#2a9d8f", Axes: Axes{Economic: -0.3, Social: -0.5}},
	{ID: "centrist", Name: "Centrist", Color: "#8d99ae", Axes: Axes{Economic: 0.0, Social: 0.0}},
	{ID: "populist", Name: "Populist", Color: "#f77f00", Axes: Axes{Economic: -0.2, Social: 0.5}},
}

// IdeologyByID looks up an ideology in the catalogue.
func IdeologyByID(id string) (Ideology, bool) {
	for _, ide := range Ideologies {
		if ide.ID == id {
			return ide, true
		}
	}
	return Ideology{}, false
}

// NearestIdeology returns the catalogue entry closest to a position.
func NearestIdeology(a Axes) Ideology {
	best := Ideologies[0]
	bestDist := a.Distance(best.Axes)
	for _, ide := range Ideologies[1:] {
		if d := a.Distance(ide.Axes); d < bestDist {
			best, bestDist = ide, d
		}
	}
	return best
}
