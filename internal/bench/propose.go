package bench

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const emptyResponseMessage = "The response from OpenAI was empty. Please try again."

// Proposal is the result of a successful Propose or Retry.
type Proposal struct {
	Edit        PendingEdit
	AcceptLabel string
	DiffTitle   string
}

// Propose runs commandName against resourceID: it checks the credential and
// eligibility, derives the destination name, runs the transform, writes the
// draft to the scratch root, records the pending edit and shows the diff.
// Nothing is written and no pending edit is recorded unless the transform
// produced content.
func (s *Service) Propose(ctx context.Context, commandName, resourceID string) (*Proposal, error) {
	def, ok := s.registry.Lookup(commandName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, commandName)
	}
	return s.propose(ctx, def, resourceID, "")
}

func (s *Service) propose(ctx context.Context, def CommandDefinition, resourceID, model string) (*Proposal, error) {
	log := func(msg string, args ...any) {
		s.logger.Info(msg, append([]any{"command", def.Name, "resource", resourceID}, args...)...)
	}

	if def.RequireCredential {
		if err := s.ensureCredential(ctx); err != nil {
			return nil, err
		}
	}

	if s.isDraft(resourceID) {
		s.prompter.Warn(fmt.Sprintf("%s is a proposed draft. Accept or discard it instead.", resourceID))
		log("resource is a draft")
		return nil, reported(fmt.Errorf("%w: %s", ErrDraftResource, resourceID))
	}

	content, err := s.resources.ReadText(ctx, resourceID)
	if err != nil {
		s.prompter.Error(fmt.Sprintf("Could not read %s: %v", resourceID, err))
		return nil, reported(fmt.Errorf("reading %s: %w", resourceID, err))
	}
	doc := Document{ID: resourceID, Name: s.resources.Basename(resourceID), Content: content}

	if v := def.check(doc); v.Denied {
		s.prompter.Warn(v.Reason)
		log("command not eligible", "reason", v.Reason)
		return nil, reported(&EligibilityError{Command: def.Name, Reason: v.Reason})
	}

	destName, err := def.destinationName(ctx, doc, s.prompter)
	if err != nil {
		return nil, fmt.Errorf("deriving destination name: %w", err)
	}
	if destName == "" || strings.ContainsAny(destName, `/\`) {
		return nil, fmt.Errorf("invalid destination name %q", destName)
	}
	scratch := s.resources.Join(s.scratchRoot, destName)
	if scratch == resourceID {
		return nil, reported(fmt.Errorf("%w: %s", ErrDraftResource, resourceID))
	}

	if err := s.checkScratch(scratch, resourceID); err != nil {
		return nil, err
	}

	if model == "" {
		model = s.settings.DefaultModel()
	}
	log("running transform", "model", model, "destination", destName)

	out, err := def.Transform(ctx, TransformInput{Content: content, DestinationName: destName, Model: model})
	if err != nil {
		s.prompter.Error(fmt.Sprintf("%s failed: %v", def.Name, err))
		return nil, reported(fmt.Errorf("transform %s: %w", def.Name, err))
	}
	if strings.TrimSpace(out) == "" {
		s.prompter.Error(emptyResponseMessage)
		return nil, reported(ErrEmptyTransform)
	}

	// The store may have changed while the transform was running.
	if err := s.checkScratch(scratch, resourceID); err != nil {
		return nil, err
	}

	if err := s.resources.WriteText(ctx, scratch, out); err != nil {
		s.prompter.Error(fmt.Sprintf("Could not write draft %s: %v", scratch, err))
		return nil, reported(fmt.Errorf("writing draft: %w", err))
	}

	edit := PendingEdit{
		ScratchPath: scratch,
		OriginalID:  resourceID,
		CommandName: def.Name,
		Model:       model,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.store.Put(edit); err != nil {
		if derr := s.resources.Delete(ctx, scratch); derr != nil {
			s.logger.Warn("removing unregistered draft", "scratch", scratch, "error", derr)
		}
		return nil, fmt.Errorf("recording pending edit: %w", err)
	}
	log("proposed edit", "scratch", scratch)

	if err := s.surface.ShowDiff(ctx, resourceID, scratch, def.Title()); err != nil {
		s.logger.Warn("showing diff", "scratch", scratch, "error", err)
	}
	s.prompter.Info(fmt.Sprintf("Choose '%s' to apply proposed changes.", def.Label()))
	s.record(EventProposed, edit, "")

	return &Proposal{Edit: edit, AcceptLabel: def.Label(), DiffTitle: def.Title()}, nil
}

// isDraft reports whether id sits directly in the scratch root.
func (s *Service) isDraft(id string) bool {
	root := s.resources.Dirname(s.resources.Join(s.scratchRoot, "draft"))
	return s.resources.Dirname(id) == root
}

// ensureCredential makes sure a token is available, prompting once if not.
func (s *Service) ensureCredential(ctx context.Context) error {
	if s.credentials == nil {
		return ErrCredentialMissing
	}
	token, err := s.credentials.Token(ctx)
	if err != nil {
		return fmt.Errorf("reading api token: %w", err)
	}
	if token != "" {
		return nil
	}
	token, err = s.credentials.PromptForToken(ctx)
	if err != nil && !errors.Is(err, ErrPromptCancelled) {
		return fmt.Errorf("prompting for api token: %w", err)
	}
	if token == "" {
		return ErrCredentialMissing
	}
	return nil
}

// checkScratch rejects a proposal whose scratch path is held by a pending
// edit for a different resource. A pending edit for the same resource is
// replaced by the new proposal.
func (s *Service) checkScratch(scratch, resourceID string) error {
	state, err := s.store.Lookup(scratch)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", scratch, err)
	}
	p, ok := state.(Proposed)
	if !ok || p.Edit.OriginalID == resourceID {
		return nil
	}
	s.prompter.Warn(fmt.Sprintf("A proposed edit for %s is already pending for %s. Accept or discard it first.",
		s.resources.Basename(scratch), p.Edit.OriginalID))
	return reported(fmt.Errorf("%w: %s", ErrScratchCollision, scratch))
}
