package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/validprot/validprot/internal/types"
)

var (
	dataset     string
	destination string
	rate        int
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a Pfam reference dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !types.Dataset(dataset).Valid() {
			var possibleDatasets []string
			for _, d := range types.Datasets {
				possibleDatasets = append(possibleDatasets, string(d))
			}
			return fmt.Errorf("dataset %s is invalid. Choose one of possible values: %s", dataset, strings.Join(possibleDatasets, " "))
		}
		if destination == "" {
			return fmt.Errorf("destination %s is invalid", destination)
		}
		if cmd.Flags().Changed("rate") {
			conf.Download.Rate = rate
		}

		path, err := services.Download().Download(cmd.Context(), types.Dataset(dataset), destination, conf.Download.Rate)
		if err != nil {
			return fmt.Errorf("failed to download dataset %s: %w", dataset, err)
		}
		logrus.WithField("path", path).Info("Dataset ready")
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVar(&dataset, "dataset", string(types.DatasetPfamA), "dataset to fetch")
	downloadCmd.Flags().StringVar(&destination, "destination", "", "directory to place the dataset in")
	downloadCmd.Flags().IntVar(&rate, "rate", 0, "download rate limit in KiB/s, 0 for unlimited")
}
