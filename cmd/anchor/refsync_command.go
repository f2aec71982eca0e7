package main

import (
	"strings"

	"github.com/spf13/cobra"

	"anchor/internal/config"
	"anchor/internal/logging"
	"anchor/internal/syncjob"
	"anchor/internal/translate"
	"anchor/internal/whisperx"
)

func newRefSyncCommand(cctx *commandContext) *cobra.Command {
	var outputPath string
	var referenceLanguage string
	var forceTranslate bool
	var noTranslate bool

	cmd := &cobra.Command{
		Use:   "refsync SUBTITLE REFERENCE",
		Short: "Align a subtitle file against an already-synced reference subtitle",
		Long: `Refsync retimes an out-of-sync subtitle by aligning its text against a
reference subtitle that is already in sync (for example a different-language
release of the same cut). No audio processing is involved. When the two
scripts are in different languages a ghost translation bridges the gap;
--reference-language names the reference's language for the translator.`,
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

			subtitlePath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			referencePath, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}

			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = defaultOutputPath(subtitlePath)
			} else if output, err = config.ExpandPath(output); err != nil {
				return err
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

			runner := syncjob.New(cfg, logger, whisperx.New(cfg, logger), nil, translator)
			result, err := runner.RunReference(cmd.Context(), syncjob.ReferenceJob{
				SubtitlePath:      subtitlePath,
				ReferencePath:     referencePath,
				OutputPath:        output,
				ReferenceLanguage: strings.ToLower(strings.TrimSpace(referenceLanguage)),
				ForceTranslate:    forceTranslate,
			})
			if err != nil {
				return err
			}

			printSyncResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the synced subtitle file (default: <subtitle>.synced.srt)")
	cmd.Flags().StringVar(&referenceLanguage, "reference-language", "", "Language of the reference subtitle (ISO 639-1), required for ghost translation")
	cmd.Flags().BoolVar(&forceTranslate, "force-translate", false, "Ghost-translate the script even when its language matches the reference")
	cmd.Flags().BoolVar(&noTranslate, "no-translate", false, "Never ghost-translate, even when configured")

	return cmd
}
