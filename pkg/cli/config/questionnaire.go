package config

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/domain/types"
)

//go:embed default_questionnaire.toml
var defaultQuestionnaire []byte

// QuestionnaireFile is the TOML representation of the questionnaire
type QuestionnaireFile struct {
	Title     string         `toml:"title"`
	Questions []QuestionFile `toml:"question"`
}

// QuestionFile is one [[question]] table
type QuestionFile struct {
	ID      string   `toml:"id"`
	Text    string   `toml:"text"`
	Options []string `toml:"options"`
}

// Validate checks that the question ID is canonical and the entry is complete
func (q *QuestionFile) Validate() error {
	id := types.QuestionID(q.ID)
	if !id.IsValid() {
		return goerr.Wrap(ErrInvalidQuestion, "invalid question ID", goerr.V(QuestionIDKey, q.ID))
	}
	if strings.TrimSpace(q.Text) == "" {
		return goerr.Wrap(ErrInvalidQuestion, "question text is required", goerr.V(QuestionIDKey, q.ID))
	}
	return nil
}

// ToDomain converts the file into a validated domain questionnaire
func (f *QuestionnaireFile) ToDomain() (*model.Questionnaire, error) {
	questions := make([]model.Question, len(f.Questions))
	for i, q := range f.Questions {
		if err := q.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid question", goerr.V(QuestionIndexKey, i))
		}
		options := make([]string, len(q.Options))
		for j, opt := range q.Options {
			options[j] = strings.TrimSpace(opt)
		}
		questions[i] = model.Question{
			ID:      types.QuestionID(q.ID),
			Text:    strings.TrimSpace(q.Text),
			Options: options,
		}
	}

	questionnaire := &model.Questionnaire{
		Title:     strings.TrimSpace(f.Title),
		Questions: questions,
	}
	if err := questionnaire.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "questionnaire validation failed", goerr.V("reason", err.Error()))
	}
	return questionnaire, nil
}

// ParseQuestionnaire decodes and validates a questionnaire document
func ParseQuestionnaire(data []byte) (*model.Questionnaire, error) {
	var file QuestionnaireFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML questionnaire", goerr.V("reason", err.Error()))
	}
	return file.ToDomain()
}

// DefaultQuestionnaire returns the built-in French questionnaire
func DefaultQuestionnaire() *model.Questionnaire {
	q, err := ParseQuestionnaire(defaultQuestionnaire)
	if err != nil {
		panic("embedded questionnaire is invalid: " + err.Error())
	}
	return q
}

// LoadQuestionnaire reads a questionnaire from a TOML file
func LoadQuestionnaire(path string) (*model.Questionnaire, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "questionnaire file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read questionnaire file", goerr.V(ConfigPathKey, path))
	}

	q, err := ParseQuestionnaire(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load questionnaire", goerr.V(ConfigPathKey, path))
	}
	return q, nil
}

// Questionnaire holds the CLI flag selecting a questionnaire file
type Questionnaire struct {
	path string
}

func (x *Questionnaire) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "questionnaire",
			Aliases:     []string{"q"},
			Usage:       "Path to a questionnaire TOML file (built-in French questionnaire if empty)",
			Sources:     cli.EnvVars("IAWASHING_QUESTIONNAIRE"),
			Destination: &x.path,
		},
	}
}

// Configure loads the configured file, or the built-in questionnaire
func (x *Questionnaire) Configure() (*model.Questionnaire, error) {
	if x.path == "" {
		return DefaultQuestionnaire(), nil
	}
	return LoadQuestionnaire(x.path)
}
