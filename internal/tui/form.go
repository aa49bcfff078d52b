package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/mchave3/Intune-Group-Assignments/internal/app"
	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

// FormPresenter shows prompts and notices as huh forms.
type FormPresenter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
	notesStyle string
	width      int
}

// FormOption configures a FormPresenter.
type FormOption func(*FormPresenter)

// WithFormIO sets the input and output streams of the forms.
func WithFormIO(in io.Reader, out io.Writer) FormOption {
	return func(p *FormPresenter) {
		p.in = in
		p.out = out
	}
}

// WithAccessible switches huh to its line-based accessible mode.
func WithAccessible(accessible bool) FormOption {
	return func(p *FormPresenter) { p.accessible = accessible }
}

// WithNotesStyle sets the glamour style used for release notes.
func WithNotesStyle(style string) FormOption {
	return func(p *FormPresenter) { p.notesStyle = style }
}

// NewFormPresenter creates a presenter on stdin/stdout.
func NewFormPresenter(opts ...FormOption) *FormPresenter {
	p := &FormPresenter{
		in:         os.Stdin,
		out:        os.Stdout,
		notesStyle: "dark",
		width:      defaultWidth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Confirm asks the prompt as a yes/cancel confirmation. Release notes, when
// present, are rendered above the form.
func (p *FormPresenter) Confirm(ctx context.Context, pr app.Prompt) (app.Choice, error) {
	if notes := RenderNotes(pr.ReleaseNotes, p.notesStyle, p.width); notes != "" {
		_, _ = fmt.Fprintln(p.out, labelStyle.Render("Release notes"))
		_, _ = fmt.Fprintln(p.out, notesBoxStyle.Render(notes))
	}

	var yes bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(pr.Title).
				Description(pr.Message).
				Affirmative(pr.Yes).
				Negative(pr.Cancel).
				Value(&yes),
		),
	)
	if err := p.run(ctx, form); err != nil {
		return app.ChoiceCancel, formError(err)
	}
	if yes {
		return app.ChoiceYes, nil
	}
	return app.ChoiceCancel, nil
}

// Notify shows the notice as a note with a single button.
func (p *FormPresenter) Notify(ctx context.Context, n app.Notice) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(n.Title).
				Description(n.Message).
				Next(true).
				NextLabel(n.Button),
		),
	)
	if err := p.run(ctx, form); err != nil {
		// Dismissing a notice with ctrl+c is still an acknowledgement.
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return formError(err)
	}
	return nil
}

func (p *FormPresenter) run(ctx context.Context, form *huh.Form) error {
	return form.
		WithInput(p.in).
		WithOutput(p.out).
		WithAccessible(p.accessible).
		WithShowHelp(true).
		RunWithContext(ctx)
}

// formError maps huh's abort and timeout sentinels onto ErrCanceled.
func formError(err error) error {
	switch {
	case errors.Is(err, huh.ErrUserAborted), errors.Is(err, huh.ErrTimeout):
		return fmt.Errorf("prompt: %w", igaerrors.Classify(igaerrors.ErrCanceled, err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("prompt: %w", igaerrors.Classify(igaerrors.ErrCanceled, err))
	default:
		return fmt.Errorf("prompt: %w", err)
	}
}
