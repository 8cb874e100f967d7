package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elakbay/elakbay/internal/weather"
)

var (
	weatherLat          float64
	weatherLon          float64
	weatherMunicipality string
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show current conditions for coordinates or a municipality",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		env, err := newEnvironment(ctx)
		if err != nil {
			return err
		}

		var current *weather.Current
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
			current, err = env.weather.CurrentByCoordinates(ctx, weatherLat, weatherLon)
		} else if weatherMunicipality != "" {
			current, err = env.weather.CurrentByMunicipality(ctx, weatherMunicipality, "", "")
		} else {
			return fmt.Errorf("provide --lat and --lon, or --municipality")
		}
		if err != nil {
			return err
		}

		printWeather(current)
		return nil
	},
}

func init() {
	weatherCmd.Flags().Float64Var(&weatherLat, "lat", 0, "Latitude")
	weatherCmd.Flags().Float64Var(&weatherLon, "lon", 0, "Longitude")
	weatherCmd.Flags().StringVar(&weatherMunicipality, "municipality", "", "Municipality name (province and country come from config)")
}

func printWeather(current *weather.Current) {
	if current.LocationName != nil {
		fmt.Printf("Location:   %s\n", *current.LocationName)
	}
	fmt.Printf("Condition:  %s\n", current.Condition)
	fmt.Printf("Temp:       %.1f C\n", current.TempC)
	if current.Humidity != nil {
		fmt.Printf("Humidity:   %d%%\n", *current.Humidity)
	}
	if current.WindKph != nil {
		fmt.Printf("Wind:       %.1f km/h\n", *current.WindKph)
	}
}
