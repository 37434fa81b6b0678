package bench

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// Acceptance describes a committed draft.
type Acceptance struct {
	Original    string
	Destination string
	// Renamed is true when the destination differs from the original, in
	// which case the original was deleted.
	Renamed bool
}

// Accept commits the draft at scratchID. The destination is the original
// resource's directory joined with the draft's filename, so a proposal that
// changed the extension renames the original. Accept is a no-op returning
// (nil, nil) when scratchID has no pending edit.
//
// Unsaved edits the surface holds for the draft are saved first; if that
// fails nothing is committed.
//
// Once the destination is written the remaining steps run in order even if
// one of them fails; the first failure is returned.
func (s *Service) Accept(ctx context.Context, scratchID string) (*Acceptance, error) {
	edit, ok, err := s.store.Get(scratchID)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", scratchID, err)
	}
	if !ok {
		s.logger.Debug("accept: nothing pending", "resource", scratchID)
		return nil, nil
	}

	if err := s.surface.SaveResource(ctx, scratchID); err != nil {
		return nil, fmt.Errorf("saving draft: %w", err)
	}
	draft, err := s.resources.ReadText(ctx, scratchID)
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}

	dest := s.resources.Join(s.resources.Dirname(edit.OriginalID), s.resources.Basename(scratchID))
	if err := s.resources.WriteText(ctx, dest, draft); err != nil {
		return nil, fmt.Errorf("writing %s: %w", dest, err)
	}

	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	renamed := dest != edit.OriginalID
	if renamed {
		if err := s.resources.Delete(ctx, edit.OriginalID); err != nil {
			keep(fmt.Errorf("deleting original %s: %w", edit.OriginalID, err))
		}
	}
	if dest != scratchID {
		if err := s.resources.Delete(ctx, scratchID); err != nil {
			keep(fmt.Errorf("deleting draft: %w", err))
		}
	}
	if err := s.store.Remove(scratchID); err != nil {
		keep(fmt.Errorf("removing pending edit: %w", err))
	}
	if err := s.surface.CloseActiveView(ctx); err != nil {
		keep(fmt.Errorf("closing diff: %w", err))
	}
	if err := s.surface.ShowResource(ctx, dest); err != nil {
		keep(fmt.Errorf("showing %s: %w", dest, err))
	}

	s.logger.Info("accepted edit", "command", edit.CommandName, "original", edit.OriginalID, "destination", dest)
	s.record(EventAccepted, edit, dest)

	return &Acceptance{Original: edit.OriginalID, Destination: dest, Renamed: renamed}, firstErr
}

// Retry proposes the command that produced scratchID again, against the
// original resource's current content, using escalatedModel. If the new
// draft lands at a different scratch path, the old draft and its pending edit
// are removed. On failure the existing proposal is left as it was. Retry is
// a no-op returning (nil, nil) when scratchID has no pending edit or its
// command is no longer registered.
func (s *Service) Retry(ctx context.Context, scratchID, escalatedModel string) (*Proposal, error) {
	edit, ok, err := s.store.Get(scratchID)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", scratchID, err)
	}
	if !ok {
		s.logger.Debug("retry: nothing pending", "resource", scratchID)
		return nil, nil
	}
	def, ok := s.registry.Lookup(edit.CommandName)
	if !ok {
		s.logger.Warn("retry: command no longer registered", "command", edit.CommandName)
		return nil, nil
	}

	p, err := s.propose(ctx, def, edit.OriginalID, escalatedModel)
	if err != nil {
		return nil, err
	}

	if p.Edit.ScratchPath != scratchID {
		if err := s.removeDraft(ctx, scratchID); err != nil {
			s.logger.Warn("removing superseded draft", "scratch", scratchID, "error", err)
		}
	}
	s.record(EventRetried, p.Edit, "")
	return p, nil
}

// RetryWithLargerModel retries with the model the settings escalate to. It
// returns ErrRetryDisabled when the settings do not allow a larger retry.
func (s *Service) RetryWithLargerModel(ctx context.Context, scratchID string) (*Proposal, error) {
	model, ok := s.settings.RetryModel()
	if !ok {
		return nil, ErrRetryDisabled
	}
	return s.Retry(ctx, scratchID, model)
}

// Discard drops the draft at scratchID without touching the original.
// It is a no-op when scratchID has no pending edit.
func (s *Service) Discard(ctx context.Context, scratchID string) error {
	edit, ok, err := s.store.Get(scratchID)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", scratchID, err)
	}
	if !ok {
		return nil
	}

	if active, err := s.surface.ActiveResource(ctx); err == nil && active == scratchID {
		if err := s.surface.CloseActiveView(ctx); err != nil {
			s.logger.Warn("closing diff", "error", err)
		}
	}
	if err := s.removeDraft(ctx, scratchID); err != nil {
		return err
	}

	s.logger.Info("discarded edit", "command", edit.CommandName, "original", edit.OriginalID)
	s.record(EventDiscarded, edit, "")
	return nil
}

func (s *Service) removeDraft(ctx context.Context, scratchID string) error {
	if err := s.resources.Delete(ctx, scratchID); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting draft: %w", err)
	}
	if err := s.store.Remove(scratchID); err != nil {
		return fmt.Errorf("removing pending edit: %w", err)
	}
	return nil
}
