package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yonnovia/iawashing/pkg/cli/config"
	"github.com/yonnovia/iawashing/pkg/domain/model/auth"
	"github.com/yonnovia/iawashing/pkg/service/storage"
	"github.com/yonnovia/iawashing/pkg/usecase"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
	"github.com/yonnovia/iawashing/pkg/utils/safe"
)

const cliActor = "cli"

func cmdExport() *cli.Command {
	var sessionID string
	var output string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "session-id",
			Usage:       "Session to export",
			Required:    true,
			Destination: &sessionID,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Local path or gs://bucket/object (feedbacks_<session>.csv in the current directory if empty)",
			Sources:     cli.EnvVars("IAWASHING_EXPORT_OUTPUT"),
			Destination: &output,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export the feedback CSV of a session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			ctx = auth.ContextWithClaims(ctx, &auth.Claims{Subject: cliActor, Role: auth.RoleAdmin})
			uc := usecase.New(repo)
			export, err := uc.Export.ExportFeedbackCSV(ctx, sessionID)
			if err != nil {
				return goerr.Wrap(err, "failed to export feedback")
			}

			dest := output
			if dest == "" {
				dest = export.Filename
			}

			writer := storage.New()
			defer safe.Close(ctx, writer)
			if err := writer.Write(ctx, dest, "text/csv; charset=utf-8", export.Data); err != nil {
				return goerr.Wrap(err, "failed to write export", goerr.V("dest", dest))
			}

			logger.Info("Feedback exported",
				"session_id", sessionID,
				"dest", dest,
				"bytes", len(export.Data),
			)
			return nil
		},
	}
}
