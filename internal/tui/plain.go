package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mchave3/Intune-Group-Assignments/internal/app"
	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

// PlainPresenter asks prompts as "[y/N]" lines. It is used without a
// terminal or when the TUI is disabled.
type PlainPresenter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlainPresenter creates a presenter reading answers from in.
func NewPlainPresenter(in io.Reader, out io.Writer) *PlainPresenter {
	return &PlainPresenter{in: bufio.NewReader(in), out: out}
}

// Confirm prints the prompt and reads one answer line. Only "y", "yes" or
// the affirmative label count as yes. End of input is an abort.
func (p *PlainPresenter) Confirm(ctx context.Context, pr app.Prompt) (app.Choice, error) {
	if err := ctx.Err(); err != nil {
		return app.ChoiceCancel, fmt.Errorf("prompt: %w", igaerrors.Classify(igaerrors.ErrCanceled, err))
	}

	_, _ = fmt.Fprintln(p.out, titleStyle.Render(pr.Title))
	_, _ = fmt.Fprintln(p.out, pr.Message)
	if notes := strings.TrimSpace(pr.ReleaseNotes); notes != "" {
		_, _ = fmt.Fprintln(p.out)
		_, _ = fmt.Fprintln(p.out, labelStyle.Render("Release notes:"))
		_, _ = fmt.Fprintln(p.out, notes)
	}
	_, _ = fmt.Fprintf(p.out, "\n%s / %s [y/N]: ", pr.Yes, pr.Cancel)

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		_, _ = fmt.Fprintln(p.out)
		return app.ChoiceCancel, fmt.Errorf("prompt: %w", igaerrors.Classify(igaerrors.ErrCanceled, err))
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "y" || answer == "yes" || (answer != "" && answer == strings.ToLower(pr.Yes)) {
		return app.ChoiceYes, nil
	}
	return app.ChoiceCancel, nil
}

// Notify prints the notice.
func (p *PlainPresenter) Notify(_ context.Context, n app.Notice) error {
	_, err := fmt.Fprintf(p.out, "%s %s\n", errorStyle.Render(n.Title+":"), n.Message)
	return err
}
