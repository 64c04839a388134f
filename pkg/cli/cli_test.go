package cli_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
	"github.com/yonnovia/iawashing/pkg/cli"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/repository/sqldb"
	"github.com/yonnovia/iawashing/pkg/usecase"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestRun_ValidateCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("built-in questionnaire", func(t *testing.T) {
		err := cli.Run(ctx, []string{"iawashing", "validate"}, "test")
		gt.NoError(t, err)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := writeFile(t, "questionnaire.toml", `
title = "Broken"

[[question]]
id = "q1"
text = "Only one"
options = ["Oui", "Non"]
`)
		err := cli.Run(ctx, []string{"iawashing", "validate", "--questionnaire", path}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nonexistent.toml")
		err := cli.Run(ctx, []string{"iawashing", "validate", "--questionnaire", path}, "test")
		gt.Value(t, err).NotNil()
	})
}

func TestRun_ScoreCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("wrapped answers as JSON", func(t *testing.T) {
		in := writeFile(t, "answers.json", `{"answers": {"q1": "Oui", "q2": "Oui", "q3": "1-2", "q4": "Oui", "q5": "Oui", "q6": "Oui", "q7": "Oui", "q8": "Oui", "q9": "Oui", "q10": "<6 mois"}}`)
		out := filepath.Join(t.TempDir(), "result.json")

		err := cli.Run(ctx, []string{"iawashing", "score", "--json", "-o", out, in}, "test")
		gt.NoError(t, err).Required()

		data, err := os.ReadFile(out)
		gt.NoError(t, err).Required()
		var a model.Assessment
		gt.NoError(t, json.Unmarshal(data, &a)).Required()
		// U = 0.75 loses 7.5 points, plus the communication flag
		gt.Value(t, a.Score).Equal(23)
		gt.Value(t, a.Breakdown.Flags).Equal(15)
	})

	t.Run("bare answers as text", func(t *testing.T) {
		in := writeFile(t, "answers.json", `{"question10": ">12 mois"}`)
		out := filepath.Join(t.TempDir(), "result.txt")

		err := cli.Run(ctx, []string{"iawashing", "score", "-o", out, in}, "test")
		gt.NoError(t, err).Required()

		data, err := os.ReadFile(out)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Contains("100/100")
		gt.String(t, string(data)).Contains("Élevé")
	})

	t.Run("answers is not an object", func(t *testing.T) {
		in := writeFile(t, "answers.json", `{"answers": "Oui"}`)
		err := cli.Run(ctx, []string{"iawashing", "score", in}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file", func(t *testing.T) {
		err := cli.Run(ctx, []string{"iawashing", "score", filepath.Join(t.TempDir(), "none.json")}, "test")
		gt.Value(t, err).NotNil()
	})
}

func TestRun_ExportCommand(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "iawashing.db")

	db, err := sqldb.New(ctx, sqldb.DriverSQLite, dsn)
	gt.NoError(t, err).Required()
	uc := usecase.New(db)
	session, err := uc.Admin.CreateSession(ctx, usecase.CreateSessionInput{Title: "Campagne"})
	gt.NoError(t, err).Required()
	_, err = uc.Survey.Submit(ctx, session.ID.String(), map[string]any{"q1": "Oui"}, "DSI")
	gt.NoError(t, err).Required()
	gt.NoError(t, db.Close()).Required()

	t.Run("writes CSV to a local path", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "nested", "export.csv")
		err := cli.Run(ctx, []string{
			"iawashing", "export",
			"--repository-backend", "sqlite",
			"--database-dsn", dsn,
			"--session-id", session.ID.String(),
			"--output", out,
		}, "test")
		gt.NoError(t, err).Required()

		f, err := os.Open(out)
		gt.NoError(t, err).Required()
		defer f.Close()
		records, err := csv.NewReader(f).ReadAll()
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(2).Required()
		gt.Value(t, records[1][4]).Equal("DSI")
		gt.Value(t, records[1][5]).Equal("Oui")
	})

	t.Run("unknown session", func(t *testing.T) {
		err := cli.Run(ctx, []string{
			"iawashing", "export",
			"--repository-backend", "sqlite",
			"--database-dsn", dsn,
			"--session-id", "missing",
			"--output", filepath.Join(t.TempDir(), "x.csv"),
		}, "test")
		gt.Value(t, err).NotNil()
	})
}

func TestGetIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig("test")
	gt.NoError(t, cfg.Validate())
	gt.Array(t, cfg.Collections).Length(2).Required()

	names := make([]string, len(cfg.Collections))
	for i, c := range cfg.Collections {
		names[i] = c.Name
		for _, idx := range c.Indexes {
			gt.Value(t, idx.Fields[0].Path).Equal("SessionID")
			gt.Value(t, idx.Fields[0].Order).Equal(fireconf.OrderAscending)
		}
	}
	gt.Value(t, strings.Join(names, ",")).Equal("test_submissions,test_feedbacks")
}
