package testutil

import (
	"context"
	"sync"

	"craftbench/internal/bench"
)

// Answer is a scripted reply to a single prompt.
type Answer struct {
	Value string
	Err   error
}

// ScriptedPrompter answers Choose, Confirm, InputText and InputSecret from a
// queue and records every message shown. An empty queue answers with
// bench.ErrPromptCancelled.
type ScriptedPrompter struct {
	mu      sync.Mutex
	answers []Answer

	Asked    []string
	Options  [][]string
	Warnings []string
	Errors   []string
	Infos    []string
}

var _ bench.Prompter = (*ScriptedPrompter)(nil)

// NewScriptedPrompter creates a prompter that gives answers in order.
func NewScriptedPrompter(answers ...string) *ScriptedPrompter {
	p := &ScriptedPrompter{}
	for _, a := range answers {
		p.answers = append(p.answers, Answer{Value: a})
	}
	return p
}

// Queue appends an answer.
func (p *ScriptedPrompter) Queue(a Answer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answers = append(p.answers, a)
}

func (p *ScriptedPrompter) next(question string, options []string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Asked = append(p.Asked, question)
	p.Options = append(p.Options, options)
	if len(p.answers) == 0 {
		return "", bench.ErrPromptCancelled
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a.Value, a.Err
}

func (p *ScriptedPrompter) Choose(_ context.Context, title string, options []string) (string, error) {
	return p.next(title, options)
}

func (p *ScriptedPrompter) Confirm(_ context.Context, message string, options []string) (string, error) {
	return p.next(message, options)
}

func (p *ScriptedPrompter) InputText(_ context.Context, prompt string) (string, error) {
	return p.next(prompt, nil)
}

func (p *ScriptedPrompter) InputSecret(_ context.Context, prompt string) (string, error) {
	return p.next(prompt, nil)
}

func (p *ScriptedPrompter) Warn(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Warnings = append(p.Warnings, msg)
}

func (p *ScriptedPrompter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Errors = append(p.Errors, msg)
}

func (p *ScriptedPrompter) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Infos = append(p.Infos, msg)
}
