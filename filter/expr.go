package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultCacheSize is the number of compiled expressions kept by NewCompiler
const DefaultCacheSize = 64

// Filter is a compiled boolean expression. It is safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache sets the compiled expression cache size. Zero disables caching.
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size <= 0 {
			c.cache = nil
			return
		}
		c.cache = newLRUCache[*Filter](size)
	}
}

// WithFunctions adds custom helper functions available to every expression
func WithFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helpers, funcs)
	}
}

// Compiler turns expression text into Filters
type Compiler struct {
	helpers map[string]any
	cache   *lruCache[*Filter]
}

// NewCompiler creates an expr-based compiler with the built-in helpers and a cache
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		helpers: helperFunctions(),
		cache:   newLRUCache[*Filter](DefaultCacheSize),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compile compiles an expression. The result must be boolean.
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.helpers),
		expr.AllowUndefinedVariables(), // Record fields are bound at run time
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &Filter{
		expression: expression,
		program:    program,
		helpers:    c.helpers,
	}

	if c.cache != nil {
		c.cache.put(expression, f)
	}

	return f, nil
}

// Clear empties the compiled expression cache
func (c *Compiler) Clear() {
	if c.cache != nil {
		c.cache.clear()
	}
}

// Size returns the number of cached expressions
func (c *Compiler) Size() int {
	if c.cache != nil {
		return c.cache.len()
	}
	return 0
}

// Expression returns the original expression text
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against a record environment
func (f *Filter) Match(record Env) (bool, error) {
	env := make(map[string]any, len(f.helpers)+len(record.Fields)+len(record.Funcs))
	maps.Copy(env, f.helpers)
	maps.Copy(env, record.Funcs)
	maps.Copy(env, record.Fields)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			Record:     record.Name,
			Reason:     "failed to run expression",
			Err:        err,
		}
	}

	// AsBool guarantees the type
	return result.(bool), nil
}

// helperFunctions returns the record-independent helpers
func helperFunctions() map[string]any {
	funcs := make(map[string]any, 16)

	// Date helpers
	funcs["daysSince"] = func(t time.Time) int {
		if t.IsZero() {
			return 0
		}
		return int(time.Since(t).Hours() / 24)
	}
	funcs["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	funcs["hoursAgo"] = func(hours int) time.Time {
		return time.Now().Add(-time.Duration(hours) * time.Hour)
	}
	funcs["parseDate"] = func(value string) time.Time {
		t, _ := time.Parse(time.DateOnly, value)
		return t
	}
	funcs["now"] = time.Now

	// String helpers, case-insensitive
	funcs["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	funcs["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	funcs["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	funcs["lower"] = strings.ToLower
	funcs["upper"] = strings.ToUpper

	return funcs
}
