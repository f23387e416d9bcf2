package cli

import (
	"github.com/AlecAivazis/survey/v2"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

type surveyConfirmer struct{}

func NewSurveyConfirmer() Confirmer {
	return surveyConfirmer{}
}

func (surveyConfirmer) Confirm(message string) (bool, error) {
	answer := false
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}
	return answer, nil
}
