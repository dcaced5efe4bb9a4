package politics

import (
	"github.com/talgya/civic-sim/internal/entropy"
)

// GenerateName draws a full name from the pools.
func GenerateName(src *entropy.Source) string {
	return entropy.Pick(src, firstNames) + " " + entropy.Pick(src, lastNames)
}

// Name pools for procedural generation.
var firstNames = []string{
	"Alex", "Avery", "Blake", "Cameron", "Dana", "Drew", "Elliot", "Emerson",
	"Frances", "Gabriel", "Harper", "Hayden", "Jamie", "Jordan", "Kai", "Kendall",
	"Logan", "Morgan", "Noel", "Parker", "Quinn", "Reese", "Riley", "Rowan",
	"Sage", "Sam", "Skyler", "Taylor", "Teagan", "Val", "Wren", "Adrian",
	"Beatrice", "Caleb", "Diana", "Elena", "Felix", "Grace", "Hector", "Iris",
	"Julian", "Keira", "Leon", "Maya", "Nathan", "Olivia", "Priya", "Rafael",
}

var lastNames = []string{
	"Abbott", "Alvarez", "Bennett", "Brooks", "Castillo", "Chen", "Dawson", "Delgado",
	"Ellis", "Fischer", "Foster", "Garcia", "Grant", "Hayes", "Hoffman", "Ibarra",
	"Jensen", "Kaur", "Kowalski", "Lambert", "Lopez", "Marsh", "Mitchell", "Nakamura",
	"Novak", "Okafor", "Olsen", "Patel", "Porter", "Quinn", "Ramirez", "Reyes",
	"Sato", "Schmidt", "Sullivan", "Thompson", "Underwood", "Vargas", "Walsh", "Weber",
	"Whitaker", "Yamamoto", "Young", "Zhang", "Ward", "Mercer", "Harper", "Caldwell",
}
