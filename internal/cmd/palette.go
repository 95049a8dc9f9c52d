package cmd

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/terrainmap/internal/palette"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Print the region palette as hex colors",
	Long: `Palette prints one color per region, hues evenly spaced around the wheel.
It honours --regions, --palette-space, --shuffle and --shuffle-seed.`,
	RunE: runPalette,
}

func init() {
	rootCmd.AddCommand(paletteCmd)
}

func runPalette(cmd *cobra.Command, args []string) error {
	count := 8
	if viper.IsSet("regions") {
		count = viper.GetInt("regions")
	}
	if count < 1 {
		return fmt.Errorf("--regions must be >= 1, got %d", count)
	}
	space, err := palette.ParseSpace(viper.GetString("palette.space"))
	if err != nil {
		return err
	}

	p, err := palette.New(space, count)
	if err != nil {
		return err
	}
	if viper.GetBool("palette.shuffle") {
		p.Shuffle(rand.New(rand.NewSource(viper.GetInt64("palette.shuffle_seed"))))
	}

	out := cmd.OutOrStdout()
	for i, hex := range p.Hex() {
		if _, err := fmt.Fprintf(out, "%2d  %s  hue=%.1f\n", i, hex, p.Hue(i)); err != nil {
			return err
		}
	}
	return nil
}
