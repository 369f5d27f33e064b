package main

import (
	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	var configFlag string
	var opts syncOptions

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "sptnr",
		Short: "Sync Spotify popularity into Navidrome ratings",
		Long: "sptnr looks up every selected track on Spotify and writes its popularity\n" +
			"to Navidrome as a 0-5 star rating. Without --artist or --album the whole\n" +
			"library is processed, optionally windowed with --start and --limit.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, ctx, opts)
		},
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.Flags()
	flags.BoolVarP(&opts.preview, "preview", "p", false, "Preview mode: look everything up but change no ratings")
	flags.StringArrayVarP(&opts.artists, "artist", "a", nil, "Process the artist with this Navidrome ID (repeatable; ignores --start and --limit)")
	flags.StringArrayVarP(&opts.albums, "album", "b", nil, "Process the album with this Navidrome ID (repeatable; ignores --start and --limit)")
	flags.IntVarP(&opts.start, "start", "s", 0, "Start from the artist at this 0-based index")
	flags.IntVarP(&opts.limit, "limit", "l", 0, "Process at most this many artists from the start index (0 for all)")
	flags.BoolVarP(&opts.force, "force", "f", false, "Process every album, even ones finished by earlier runs")
	flags.BoolP("version", "v", false, "Print the version and exit")

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
