// Package resolver computes the final parameter values of one invocation
// from provided values, interactive answers and defaults, deciding
// conditional parameters by iterating to a fixed point.
package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/phillarmonic/paramflow/internal/condition"
	"github.com/phillarmonic/paramflow/internal/domain/parameter"
	"github.com/phillarmonic/paramflow/internal/errors"
	"github.com/phillarmonic/paramflow/internal/logger"
	"github.com/phillarmonic/paramflow/internal/prompt"
	"github.com/phillarmonic/paramflow/internal/types"
)

// Origin tells where a resolved value came from
type Origin string

const (
	OriginProvided Origin = "provided"
	OriginPrompt   Origin = "prompt"
	OriginDefault  Origin = "default"
)

// Result is the outcome of one resolution
type Result struct {
	RunID string

	// Values holds every parameter that received a value
	Values types.Values

	// Origins tells where each value came from
	Origins map[string]Origin

	// Excluded lists parameters left out because their condition was false
	Excluded []string

	// Extra holds provided names that are not declared parameters
	Extra map[string]any

	// Passes is the number of fixed-point passes run
	Passes int
}

// Resolver resolves parameter values against one immutable definition set.
// A Resolver holds no per-run state and may be used concurrently.
type Resolver struct {
	set             *parameter.Set
	validator       *parameter.Validator
	logger          *log.Logger
	prompter        prompt.Adapter
	optionalPrompts bool
	maxAttempts     int
	groupOrder      bool
}

// New creates a resolver for set
func New(set *parameter.Set, opts ...Option) *Resolver {
	r := &Resolver{
		set:         set,
		validator:   parameter.NewValidator(),
		logger:      logger.Discard(),
		maxAttempts: DefaultMaxPromptAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is a convenience wrapper around New(set, opts...).Resolve
func Resolve(ctx context.Context, set *parameter.Set, provided map[string]any, interactive bool, opts ...Option) (*Result, error) {
	return New(set, opts...).Resolve(ctx, provided, interactive)
}

// run is the private state of one Resolve call
type run struct {
	id          string
	interactive bool
	values      types.Values
	settled     map[string]bool
	origins     map[string]Origin
	invalid     map[string]error
	excluded    []string
	errs        *errors.List
	log         *log.Logger
}

func (st *run) scope() condition.Context {
	return condition.Context{Values: st.values, Settled: st.settled}
}

func (st *run) settle(name string, value *types.Value, origin Origin) {
	st.settled[name] = true
	if value != nil {
		st.values[name] = *value
		st.origins[name] = origin
	}
}

// Resolve runs the fixed-point algorithm. provided maps parameter names to
// raw values (strings, booleans, numbers, lists or types.Value); flag over
// variable precedence must already be applied by the caller. interactive
// allows prompting through the configured adapter.
//
// The result is always returned. When anything failed the error is a
// non-empty *errors.List holding every failure of the run.
func (r *Resolver) Resolve(ctx context.Context, provided map[string]any, interactive bool) (*Result, error) {
	st := &run{
		id:          uuid.NewString(),
		interactive: interactive && r.prompter != nil,
		values:      make(types.Values),
		settled:     make(map[string]bool),
		origins:     make(map[string]Origin),
		invalid:     make(map[string]error),
		errs:        errors.NewList("Parameter resolution failed"),
	}
	st.log = r.logger.With("run", st.id[:8])

	result := &Result{RunID: st.id, Extra: make(map[string]any)}

	r.seed(st, provided, result)

	pending := r.order(st)
	bound := r.set.Len() + 1

	for len(pending) > 0 {
		result.Passes++
		st.log.Debug("pass", "pass", result.Passes, "pending", len(pending))

		changed := false
		var next []string
		for _, name := range pending {
			p, _ := r.set.Get(name)
			settledNow, err := r.step(ctx, st, p)
			if err != nil {
				st.errs.Add(err)
			}
			if settledNow {
				changed = true
				continue
			}
			next = append(next, name)
		}
		pending = next

		if !changed && len(pending) > 0 {
			r.deadlock(st, pending)
			break
		}
		if result.Passes > bound {
			st.errs.Add(fmt.Errorf("resolution did not settle after %d passes", result.Passes))
			break
		}
	}

	r.warnInactiveProvided(st)

	result.Values = st.values
	result.Origins = st.origins
	result.Excluded = st.excluded

	if st.errs.HasErrors() {
		st.log.Debug("resolution failed", "errors", st.errs.Len())
		return result, st.errs
	}
	st.log.Debug("resolution complete", "values", len(st.values), "passes", result.Passes)
	return result, nil
}

// seed copies provided values into the run. Valid values settle their
// parameter at once; unknown names go to Extra.
func (r *Resolver) seed(st *run, provided map[string]any, result *Result) {
	names := make([]string, 0, len(provided))
	for name := range provided {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := provided[name]
		p, ok := r.set.Get(name)
		if !ok {
			result.Extra[name] = raw
			st.log.Debug("extra variable", "param", name)
			continue
		}

		value, err := r.validator.Coerce(p, raw)
		if err != nil {
			if st.interactive {
				// asked again during the passes
				st.invalid[name] = err
				continue
			}
			st.errs.Add(err)
			st.settle(name, nil, "")
			continue
		}

		st.settle(name, &value, OriginProvided)
		st.log.Debug("settled", "param", name, "origin", OriginProvided, "value", display(p, value))
	}
}

// order returns the unsettled parameter names in walking order
func (r *Resolver) order(st *run) []string {
	params := r.set.Parameters()
	if r.groupOrder {
		params = parameter.PromptOrder(r.set)
	}

	var pending []string
	for _, p := range params {
		if !st.settled[p.Name] {
			pending = append(pending, p.Name)
		}
	}
	return pending
}

// step tries to settle one pending parameter and reports whether it did
func (r *Resolver) step(ctx context.Context, st *run, p *parameter.Parameter) (bool, error) {
	if p.Condition != nil {
		expr, err := p.Condition.Expr()
		if err != nil {
			st.settle(p.Name, nil, "")
			return true, err
		}

		outcome, err := condition.Evaluate(expr, st.scope())
		if err != nil {
			st.settle(p.Name, nil, "")
			return true, &ConditionEvaluationError{Parameter: p.Name, Err: err}
		}

		switch outcome {
		case condition.Undecidable:
			return false, nil
		case condition.False:
			st.settle(p.Name, nil, "")
			st.excluded = append(st.excluded, p.Name)
			st.log.Debug("excluded", "param", p.Name, "condition", p.Condition.Expression)
			if err := st.invalid[p.Name]; err != nil {
				return true, err
			}
			return true, nil
		}
	}

	return true, r.settleActive(ctx, st, p)
}

// settleActive applies prompt, default and requiredness to an active
// parameter. It always settles the parameter.
func (r *Resolver) settleActive(ctx context.Context, st *run, p *parameter.Parameter) error {
	invalid := st.invalid[p.Name]

	if st.interactive && (p.Required || r.optionalPrompts || invalid != nil) {
		value, answered, err := r.ask(ctx, st, p, invalid)
		switch {
		case err != nil:
			promptErr, ok := err.(*PromptError)
			if !ok {
				// attempts exhausted: err is the last validation error
				st.settle(p.Name, nil, "")
				return err
			}
			st.interactive = false
			st.log.Warn("prompting disabled for the rest of the run", "param", p.Name, "error", promptErr.Err)
			st.errs.Add(promptErr)
		case answered:
			st.settle(p.Name, &value, OriginPrompt)
			st.log.Debug("settled", "param", p.Name, "origin", OriginPrompt, "value", display(p, value))
			return nil
		}
	}

	if invalid != nil {
		st.settle(p.Name, nil, "")
		return invalid
	}

	if p.HasDefault {
		value := p.Default.Clone()
		st.settle(p.Name, &value, OriginDefault)
		st.log.Debug("settled", "param", p.Name, "origin", OriginDefault, "value", display(p, value))
		return nil
	}

	st.settle(p.Name, nil, "")
	if p.Required {
		missing := &RequiredParameterMissing{Parameter: p.Name}
		if p.Condition != nil {
			missing.Condition = p.Condition.Expression
		}
		return missing
	}

	st.log.Debug("left unset", "param", p.Name)
	return nil
}

// ask prompts until a valid answer, a decline, an adapter failure or the
// attempt budget runs out. A decline returns answered == false and no error.
func (r *Resolver) ask(ctx context.Context, st *run, p *parameter.Parameter, previous error) (types.Value, bool, error) {
	group, _ := r.set.GroupOf(p.Name)
	req := prompt.NewRequest(p, group)
	req.Check = func(raw string) error {
		_, err := r.validator.Coerce(p, raw)
		return err
	}
	if previous != nil {
		req.LastError = previous.Error()
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		req.Attempt = attempt

		if err := ctx.Err(); err != nil {
			return types.Value{}, false, &PromptError{Parameter: p.Name, Err: err}
		}

		answer, err := r.prompter.Prompt(ctx, req)
		if err != nil {
			return types.Value{}, false, &PromptError{Parameter: p.Name, Err: err}
		}
		if answer.Declined {
			st.log.Debug("prompt declined", "param", p.Name)
			return types.Value{}, false, nil
		}

		value, err := r.validator.Coerce(p, answer.Value)
		if err == nil {
			return value, true, nil
		}
		lastErr = err
		req.LastError = err.Error()
		st.log.Debug("answer rejected", "param", p.Name, "attempt", attempt, "error", err)
	}

	return types.Value{}, false, lastErr
}

// deadlock reports the names that stayed undecidable through a pass with
// no progress, in declaration order
func (r *Resolver) deadlock(st *run, pending []string) {
	stuck := make(map[string]bool, len(pending))
	for _, name := range pending {
		stuck[name] = true
	}

	var names []string
	for _, name := range r.set.Names() {
		if stuck[name] {
			names = append(names, name)
		}
	}

	st.log.Debug("dependency deadlock", "params", names)

	// invalid provided values waiting to be asked again are never reached
	for _, name := range names {
		if err := st.invalid[name]; err != nil {
			st.errs.Add(err)
		}
	}
	st.errs.Add(&UnresolvableDependencyError{Parameters: names})
}

// warnInactiveProvided logs provided values whose condition ends up false.
// The values are kept: an explicit value always wins.
func (r *Resolver) warnInactiveProvided(st *run) {
	for _, p := range r.set.Parameters() {
		if p.Condition == nil || st.origins[p.Name] != OriginProvided {
			continue
		}
		expr, err := p.Condition.Expr()
		if err != nil {
			continue
		}
		if outcome, err := condition.Evaluate(expr, st.scope()); err == nil && outcome == condition.False {
			st.log.Warn("provided value kept although its condition is false", "param", p.Name, "condition", p.Condition.Expression)
		}
	}
}

func display(p *parameter.Parameter, v types.Value) string {
	if p.Secret {
		return "****"
	}
	return v.AsString()
}
