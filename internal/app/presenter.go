package app

import (
	"context"
	"fmt"

	"github.com/mchave3/Intune-Group-Assignments/internal/upgrade"
)

// Choice is the user's answer to a Prompt.
type Choice int

// Prompt answers.
const (
	ChoiceCancel Choice = iota
	ChoiceYes
)

func (c Choice) String() string {
	if c == ChoiceYes {
		return "yes"
	}
	return "cancel"
}

// Prompt is a binary confirmation shown to the user.
type Prompt struct {
	Title   string
	Message string
	Yes     string
	Cancel  string

	// Optional details a presenter may render.
	Version      string
	ReleaseNotes string
}

// Notice is an informational message the user acknowledges.
type Notice struct {
	Title   string
	Message string
	Button  string
}

// Presenter is the presentation capability the orchestrator depends on.
// Confirm returns an error wrapping errors.ErrCanceled when the user aborts
// the prompt without choosing.
type Presenter interface {
	Confirm(ctx context.Context, p Prompt) (Choice, error)
	Notify(ctx context.Context, n Notice) error
}

// UpdatePrompt builds the update-available confirmation for info.
func UpdatePrompt(info upgrade.UpdateInfo) Prompt {
	return Prompt{
		Title:        "Update Available",
		Message:      fmt.Sprintf("A new version %s is available. Would you like to update now?", info.Version),
		Yes:          "Yes",
		Cancel:       "Cancel",
		Version:      info.Version,
		ReleaseNotes: info.ReleaseNotes,
	}
}

// ErrorNotice is shown for every failed cycle, whatever the stage.
var ErrorNotice = Notice{
	Title:   "Error",
	Message: "An error occurred while checking for updates. Please try again later.",
	Button:  "Ok",
}

// nopPresenter declines every prompt and discards notices.
type nopPresenter struct{}

func (nopPresenter) Confirm(context.Context, Prompt) (Choice, error) { return ChoiceCancel, nil }
func (nopPresenter) Notify(context.Context, Notice) error { return nil }
