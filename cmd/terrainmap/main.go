package main

import "github.com/MeKo-Tech/terrainmap/internal/cmd"

func main() {
	cmd.Execute()
}
