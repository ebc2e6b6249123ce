package resolver

import (
	"github.com/charmbracelet/log"

	"github.com/phillarmonic/paramflow/internal/prompt"
)

// DefaultMaxPromptAttempts is how often one parameter is asked before its
// last validation error is reported
const DefaultMaxPromptAttempts = 3

// Option configures a Resolver
type Option func(*Resolver)

// WithLogger sets the logger for pass and settlement messages
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPrompter sets the adapter used in interactive runs
func WithPrompter(a prompt.Adapter) Option {
	return func(r *Resolver) {
		r.prompter = a
	}
}

// WithOptionalPrompts makes interactive runs also ask for active optional
// parameters that have no provided value
func WithOptionalPrompts(enabled bool) Option {
	return func(r *Resolver) {
		r.optionalPrompts = enabled
	}
}

// WithMaxPromptAttempts bounds the re-prompts for one parameter
func WithMaxPromptAttempts(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithGroupOrder walks parameters group by group instead of in
// declaration order, so prompts of one group stay together
func WithGroupOrder(enabled bool) Option {
	return func(r *Resolver) {
		r.groupOrder = enabled
	}
}
