package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sjroesink/whisper/internal/audio"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio capture devices",
	Run: func(cmd *cobra.Command, args []string) {
		if err := audio.Initialize(); err != nil {
			log.Fatal().Err(err).Msg("initialise audio subsystem")
		}
		defer audio.Terminate()

		devices, err := audio.ListInputDevices()
		if err != nil {
			log.Fatal().Err(err).Msg("list devices")
		}
		for _, d := range devices {
			marker := " "
			if d.IsDefault {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, d.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
