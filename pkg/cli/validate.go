package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yonnovia/iawashing/pkg/cli/config"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

func cmdValidate() *cli.Command {
	var questionnaireCfg config.Questionnaire

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a questionnaire file (the built-in one if none is given)",
		Flags:   questionnaireCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			questionnaire, err := questionnaireCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "questionnaire validation failed")
			}

			for _, q := range questionnaire.Questions {
				logger.Debug("Question validated",
					"id", q.ID,
					"text", q.Text,
					"options", q.Options,
				)
			}
			logger.Info("Questionnaire validation passed",
				"title", questionnaire.Title,
				"question_count", len(questionnaire.Questions),
			)
			return nil
		},
	}
}
