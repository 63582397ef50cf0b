package notify

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/tmforum-oda/reference-example-components/internal/hub"
	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// FilterEvaluator decides whether an event envelope should be delivered
// to a subscriber. The default is blanket delivery to every subscriber in
// scope; per-subscriber content filtering plugs in here.
type FilterEvaluator interface {
	Matches(sub hub.Subscriber, envelope model.Resource) (bool, error)
}

// AcceptAll delivers every event to every subscriber in scope.
type AcceptAll struct{}

func (AcceptAll) Matches(hub.Subscriber, model.Resource) (bool, error) {
	return true, nil
}

// CELFilter evaluates the subscriber's declared query as a CEL expression
// over the event envelope, bound to the variable "event". An empty query
// matches everything. Compiled programs are cached per expression.
type CELFilter struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewCELFilter creates a CEL filter evaluator.
func NewCELFilter() (*CELFilter, error) {
	env, err := cel.NewEnv(
		cel.Variable("event", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, err
	}
	return &CELFilter{env: env, programs: make(map[string]cel.Program)}, nil
}

// Validate checks that the expression compiles and yields a boolean.
// Suitable as a hub.QueryValidator so broken filters are rejected at
// registration time.
func (f *CELFilter) Validate(expr string) error {
	if expr == "" {
		return nil
	}
	_, err := f.compile(expr)
	return err
}

func (f *CELFilter) Matches(sub hub.Subscriber, envelope model.Resource) (bool, error) {
	if sub.Query == "" {
		return true, nil
	}
	prg, err := f.compile(sub.Query)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(map[string]interface{}{
		"event": map[string]interface{}(envelope),
	})
	if err != nil {
		return false, fmt.Errorf("filter evaluation failed: %w", err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter expression is not boolean: %q", sub.Query)
	}
	return matched, nil
}

func (f *CELFilter) compile(expr string) (cel.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if prg, ok := f.programs[expr]; ok {
		return prg, nil
	}

	ast, issues := f.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter expression must be boolean, got %s", ast.OutputType())
	}
	prg, err := f.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter program error: %w", err)
	}
	f.programs[expr] = prg
	return prg, nil
}
