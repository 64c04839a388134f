package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/domain/types"
	"github.com/yonnovia/iawashing/pkg/utils/safe"
)

// readAnswers accepts either {"answers": {...}} or a bare answers object.
func readAnswers(r io.Reader) (model.Answers, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode answers JSON")
	}
	if inner, ok := raw["answers"]; ok {
		obj, ok := inner.(map[string]any)
		if !ok {
			return nil, goerr.New("\"answers\" must be an object")
		}
		raw = obj
	}
	return model.NewAnswers(raw), nil
}

func levelColor(level types.RiskLevel) *color.Color {
	switch level {
	case types.RiskLevelLow:
		return color.New(color.FgGreen, color.Bold)
	case types.RiskLevelMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func printAssessment(w io.Writer, a *model.Assessment) {
	levelColor(a.Level).Fprintf(w, "%d/100  %s\n", a.Score, a.Level)
	fmt.Fprintln(w, a.Interpretation)

	dim := color.New(color.Faint)
	dim.Fprintf(w, "  governance      %.2f\n", a.Breakdown.Governance)
	dim.Fprintf(w, "  use case        %.2f\n", a.Breakdown.UseCase)
	dim.Fprintf(w, "  trust           %.2f\n", a.Breakdown.Trust)
	dim.Fprintf(w, "  ethics/security %.2f\n", a.Breakdown.EthicsSecurity)
	dim.Fprintf(w, "  weighted        %.1f\n", a.Breakdown.Weighted)
	dim.Fprintf(w, "  flags           +%d\n", a.Breakdown.Flags)
}

func cmdScore() *cli.Command {
	var asJSON bool
	var output string

	return &cli.Command{
		Name:      "score",
		Usage:     "Score an answers JSON file (stdin when the path is - or omitted)",
		ArgsUsage: "[answers.json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Print the result as JSON",
				Destination: &asJSON,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Write the result to a file instead of stdout",
				Destination: &output,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var in io.Reader = os.Stdin
			if path := c.Args().First(); path != "" && path != "-" {
				// #nosec G304 - path is provided by CLI argument
				f, err := os.Open(path)
				if err != nil {
					return goerr.Wrap(err, "failed to open answers file", goerr.V("path", path))
				}
				defer safe.Close(ctx, f)
				in = f
			}

			answers, err := readAnswers(in)
			if err != nil {
				return err
			}
			assessment := model.Assess(answers)

			var out io.Writer = os.Stdout
			if output != "" {
				// #nosec G304 - path is provided by CLI flag
				f, err := os.Create(output)
				if err != nil {
					return goerr.Wrap(err, "failed to create output file", goerr.V("path", output))
				}
				defer safe.Close(ctx, f)
				out = f
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(assessment); err != nil {
					return goerr.Wrap(err, "failed to encode assessment")
				}
				return nil
			}

			printAssessment(out, assessment)
			return nil
		},
	}
}
