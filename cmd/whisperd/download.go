package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sjroesink/whisper/internal/constme"
)

var flagModel string

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the GPU inference library and a speech model",
	Run: func(cmd *cobra.Command, args []string) {
		d := constme.NewDownloader()
		d.OnProgress = func(p constme.Progress) {
			if p.Done {
				fmt.Printf("\r%s: done                    \n", p.Item)
				return
			}
			if p.Total > 0 {
				fmt.Printf("\r%s: %d%% (%d/%d MB)", p.Item,
					p.Downloaded*100/p.Total, p.Downloaded>>20, p.Total>>20)
			} else {
				fmt.Printf("\r%s: %d MB", p.Item, p.Downloaded>>20)
			}
		}

		ctx := cmd.Context()
		dllPath, err := d.EnsureDLL(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("download library")
		}
		modelPath, err := d.EnsureModel(ctx, flagModel)
		if err != nil {
			log.Fatal().Err(err).Msg("download model")
		}

		fmt.Println("library:", dllPath)
		fmt.Println("model:  ", modelPath)
	},
}

func init() {
	downloadCmd.Flags().StringVar(&flagModel, "model", constme.DefaultModelFile, "model file to download")
	rootCmd.AddCommand(downloadCmd)
}
