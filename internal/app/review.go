package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"craftbench/internal/bench"
)

const (
	choiceRetry   = "Retry with larger model"
	choiceEdit    = "Edit draft"
	choiceDiscard = "Discard"
)

// Review asks the user what to do with p until the proposal is accepted or
// discarded. Cancelling the prompt leaves the draft pending when the pending
// store outlives the process, and discards it otherwise.
//
// A retry is offered at most once per review.
func (a *CraftApp) Review(ctx context.Context, p *bench.Proposal) (*bench.Acceptance, error) {
	retried := false
	for {
		options := []string{p.AcceptLabel}
		if _, ok := a.Settings().RetryModel(); ok && !retried {
			options = append(options, choiceRetry)
		}
		options = append(options, choiceEdit, choiceDiscard)

		title := fmt.Sprintf("%s for %s", p.DiffTitle, p.Edit.OriginalID)
		choice, err := a.prompter.Choose(ctx, title, options)
		if errors.Is(err, bench.ErrPromptCancelled) {
			return nil, a.leave(ctx, p)
		}
		if err != nil {
			return nil, err
		}

		switch choice {
		case p.AcceptLabel:
			acc, err := a.service.Accept(ctx, p.Edit.ScratchPath)
			if acc != nil {
				a.prompter.Info(fmt.Sprintf("Saved %s", acc.Destination))
			}
			return acc, err

		case choiceRetry:
			retried = true
			next, err := a.service.RetryWithLargerModel(ctx, p.Edit.ScratchPath)
			switch {
			case bench.IsReported(err):
				// The previous draft is still pending.
			case err != nil:
				a.prompter.Error(err.Error())
			case next == nil:
				return nil, nil
			default:
				p = next
			}

		case choiceEdit:
			if err := a.editor(ctx, p.Edit.ScratchPath); err != nil {
				a.prompter.Error(fmt.Sprintf("Editor failed: %v", err))
				continue
			}
			if err := a.surface.ShowDiff(ctx, p.Edit.OriginalID, p.Edit.ScratchPath, p.DiffTitle); err != nil {
				a.logger.Warn("showing diff", "scratch", p.Edit.ScratchPath, "error", err)
			}

		case choiceDiscard:
			if err := a.service.Discard(ctx, p.Edit.ScratchPath); err != nil {
				return nil, err
			}
			a.prompter.Info("Discarded proposed edits.")
			return nil, nil
		}
	}
}

func (a *CraftApp) leave(ctx context.Context, p *bench.Proposal) error {
	if a.cfg.Pending.Type == "sqlite" {
		a.prompter.Info(fmt.Sprintf("Proposed edits left at %s. Run 'craftbench accept %s' to apply them.",
			p.Edit.ScratchPath, p.Edit.ScratchPath))
		return nil
	}
	if err := a.service.Discard(ctx, p.Edit.ScratchPath); err != nil {
		return err
	}
	a.prompter.Info("Discarded proposed edits.")
	return nil
}

// runEditor returns an editor func that opens path in $VISUAL or $EDITOR,
// falling back to vi.
func runEditor(in io.Reader, out, errOut io.Writer) func(ctx context.Context, path string) error {
	return func(ctx context.Context, path string) error {
		editor := os.Getenv("VISUAL")
		if editor == "" {
			editor = os.Getenv("EDITOR")
		}
		if editor == "" {
			editor = "vi"
		}
		cmd := exec.CommandContext(ctx, "sh", "-c", editor+` "$1"`, "sh", path)
		cmd.Stdin = in
		cmd.Stdout = out
		cmd.Stderr = errOut
		return cmd.Run()
	}
}
