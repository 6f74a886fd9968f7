// Package safety decides whether a worktree may be removed.
//
// [Policy.Check] runs three steps in order. A worktree open in another
// session is a hard stop. Uncommitted changes and unpushed commits each
// need the user's confirmation. [Policy.Remove] adds the recovery flow for
// a failed removal: offer a forced retry once, and report a second failure
// as final.
package safety

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrOpenElsewhere means another session is using the worktree. It is
	// not retryable until that session ends.
	ErrOpenElsewhere = errors.New("worktree is open in another session")
	// ErrDeclined means the user answered no to a confirmation.
	ErrDeclined = errors.New("removal cancelled")
)

// PromptKind identifies what a confirmation is about.
type PromptKind int

const (
	PromptUncommitted PromptKind = iota
	PromptUnpushed
	PromptForce
	// PromptGuess confirms a target that was only matched fuzzily.
	PromptGuess
)

func (k PromptKind) String() string {
	switch k {
	case PromptUncommitted:
		return "uncommitted"
	case PromptUnpushed:
		return "unpushed"
	case PromptForce:
		return "force"
	case PromptGuess:
		return "guess"
	}
	return fmt.Sprintf("PromptKind(%d)", int(k))
}

// Prompt is a question put to the user before a destructive step.
type Prompt struct {
	Kind PromptKind
	Path string
	// Detail carries the tool output for PromptForce and the typed
	// target for PromptGuess.
	Detail string
}

// Message returns the question text.
func (p Prompt) Message() string {
	switch p.Kind {
	case PromptUncommitted:
		return fmt.Sprintf("%s has uncommitted changes. Remove anyway?", p.Path)
	case PromptUnpushed:
		return fmt.Sprintf("%s has commits not pushed to its upstream. Remove anyway?", p.Path)
	case PromptForce:
		if p.Detail != "" {
			return fmt.Sprintf("Removing %s failed:\n%s\nForce removal?", p.Path, p.Detail)
		}
		return fmt.Sprintf("Removing %s failed. Force removal?", p.Path)
	case PromptGuess:
		return fmt.Sprintf("%q is not an exact name but matches %s. Remove it?", p.Detail, p.Path)
	}
	return p.Path
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// Always answers every prompt with the same value.
type Always bool

// Confirm implements Confirmer.
func (a Always) Confirm(context.Context, Prompt) (bool, error) {
	return bool(a), nil
}

// OpenChecker reports whether a worktree is in use by a session.
type OpenChecker interface {
	IsOpen(path string) bool
}

// StatusChecker answers real-time status questions about a worktree.
type StatusChecker interface {
	HasUncommittedChanges(ctx context.Context, path string) bool
	HasUnpushedCommits(ctx context.Context, path string) bool
}

// Remover removes a worktree.
type Remover interface {
	RemoveWorktree(ctx context.Context, path string, force bool) error
}

// Policy holds the collaborators consulted before removal.
type Policy struct {
	Open    OpenChecker
	Status  StatusChecker
	Confirm Confirmer
}

// Check returns nil when path may be removed. It stops at the first step
// that fails: ErrOpenElsewhere, ErrDeclined or a Confirmer error.
func (p *Policy) Check(ctx context.Context, path string) error {
	if p.Open != nil && p.Open.IsOpen(path) {
		return fmt.Errorf("%w: %s", ErrOpenElsewhere, path)
	}
	if p.Status == nil {
		return nil
	}
	if p.Status.HasUncommittedChanges(ctx, path) {
		if err := p.ask(ctx, Prompt{Kind: PromptUncommitted, Path: path}); err != nil {
			return err
		}
	}
	if p.Status.HasUnpushedCommits(ctx, path) {
		if err := p.ask(ctx, Prompt{Kind: PromptUnpushed, Path: path}); err != nil {
			return err
		}
	}
	return nil
}

// ConfirmGuess asks whether path, found by fuzzy matching target, is the
// worktree the user meant. Returns ErrDeclined on no.
func (p *Policy) ConfirmGuess(ctx context.Context, target, path string) error {
	return p.ask(ctx, Prompt{Kind: PromptGuess, Path: path, Detail: target})
}

// Remove checks path and removes it with r. If the plain removal fails the
// user is offered a forced retry; the retry happens at most once and its
// failure is returned as is.
func (p *Policy) Remove(ctx context.Context, path string, r Remover) error {
	if err := p.Check(ctx, path); err != nil {
		return err
	}

	err := r.RemoveWorktree(ctx, path, false)
	if err == nil {
		return nil
	}
	if askErr := p.ask(ctx, Prompt{Kind: PromptForce, Path: path, Detail: err.Error()}); askErr != nil {
		if errors.Is(askErr, ErrDeclined) {
			return err
		}
		return askErr
	}
	return r.RemoveWorktree(ctx, path, true)
}

// ask returns ErrDeclined unless the user confirms p.
func (p *Policy) ask(ctx context.Context, prompt Prompt) error {
	if p.Confirm == nil {
		return ErrDeclined
	}
	ok, err := p.Confirm.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}
