package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/validprot/validprot/internal/store"
)

var (
	sampleSize int
	sampleOut  string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a random sample of final_dataset to CSV (zstd compressed for .zst)",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		if sampleOut == "" {
			return errors.New("no output given, use --out")
		}
		s, err := store.Open(cmd.Context(), conf.Database)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, s.Close())
		}()

		return services.Sample().Export(cmd.Context(), s, sampleSize, sampleOut)
	},
}

func init() {
	sampleCmd.Flags().IntVar(&sampleSize, "size", 1000, "number of protein pairs to sample")
	sampleCmd.Flags().StringVar(&sampleOut, "out", "", "output CSV path, .zst for compressed output")
}
