package classify

// Label is a named marker placed over the terrain.
type Label struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// TerrainLabels returns the biome markers for a mesh of the given amplitude.
func TerrainLabels(amplitude float64) []Label {
	return []Label{
		{Name: "Forest", X: 0, Y: amplitude * 0.2, Z: 0},
		{Name: "Desert", X: 50, Y: amplitude * 0.5, Z: 50},
		{Name: "Mountain", X: -50, Y: amplitude * 0.8, Z: -50},
		{Name: "River", X: 0, Y: amplitude * -0.5, Z: 0},
	}
}
