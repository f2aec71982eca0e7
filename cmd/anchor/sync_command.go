package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"anchor/internal/config"
	"anchor/internal/logging"
	"anchor/internal/syncjob"
	"anchor/internal/transcache"
	"anchor/internal/translate"
	"anchor/internal/whisperx"
)

func newSyncCommand(cctx *commandContext) *cobra.Command {
	var outputPath string
	var forceTranslate bool
	var skipCache bool
	var noTranslate bool

	cmd := &cobra.Command{
		Use:   "sync MEDIA SUBTITLE",
		Short: "Align a subtitle file against a media file's audio track",
		Long: `Sync transcribes the media file's primary audio track, anchors the
subtitle script to the recognized words, and writes a retimed copy of the
subtitle file. When the script and the audio are in different languages a
ghost translation bridges the gap (requires a configured translation
provider).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cctx.ensureLogger()
			if err != nil {
				return err
			}

			mediaPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			subtitlePath, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}

			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = defaultOutputPath(subtitlePath)
			} else if output, err = config.ExpandPath(output); err != nil {
				return err
			}

			store, err := transcache.Open(cfg.Paths.CacheDir)
			if err != nil {
				logger.Warn("transcript cache unavailable; transcribing without it", logging.Error(err))
				store = nil
			} else {
				defer store.Close()
			}

			var translator translate.Translator
			if !noTranslate && (cfg.Translation.Enabled || forceTranslate) {
				client, err := translate.New(cfg, logger)
				if err != nil {
					if forceTranslate {
						return err
					}
					logger.Warn("translation disabled", logging.Error(err))
				} else {
					translator = client
				}
			}

			runner := syncjob.New(cfg, logger, whisperx.New(cfg, logger), store, translator)
			result, err := runner.Run(cmd.Context(), syncjob.Job{
				MediaPath:      mediaPath,
				SubtitlePath:   subtitlePath,
				OutputPath:     output,
				ForceTranslate: forceTranslate,
				SkipCache:      skipCache,
			})
			if err != nil {
				return err
			}

			printSyncResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the synced subtitle file (default: <subtitle>.synced.srt)")
	cmd.Flags().BoolVar(&forceTranslate, "force-translate", false, "Ghost-translate the script even when its language matches the audio")
	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "Ignore cached transcripts and re-run transcription")
	cmd.Flags().BoolVar(&noTranslate, "no-translate", false, "Never ghost-translate, even when configured")

	return cmd
}

// defaultOutputPath derives the synced-copy path from the input subtitle path.
func defaultOutputPath(subtitlePath string) string {
	ext := filepath.Ext(subtitlePath)
	if !strings.EqualFold(ext, ".srt") {
		return subtitlePath + ".synced.srt"
	}
	return fmt.Sprintf("%s.synced%s", strings.TrimSuffix(subtitlePath, ext), ext)
}
