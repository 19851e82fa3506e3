// Package expression resolves values against a virtual user's Session.
//
// An Expression is one of:
//   - a static value (Static),
//   - a function of the Session (Func, FuncErr),
//   - an EL string compiled with Compile.
//
// EL strings use #{name} placeholders to read Session attributes. For string
// expressions the placeholders are interpolated into the surrounding text
// ("/users/#{userId}"). For every other type the string is an expr-lang
// expression in which each placeholder becomes an attribute lookup
// ("#{retries} < 3 && #{status} != 500").
package expression

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/roach88/surge/internal/session"
)

// Expression produces a value of type T for a given Session.
type Expression[T any] interface {
	Resolve(s *session.Session) (T, error)
}

// placeholder matches #{name}; names may contain anything but a closing brace.
var placeholder = regexp.MustCompile(`#\{([^{}]+)\}`)

// CompileError is returned when an EL string cannot be compiled.
type CompileError struct {
	Expression string
	Message    string
	Err        error
}

func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid expression %q: %s: %v", e.Expression, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid expression %q: %s", e.Expression, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// MissingAttributeError is returned when a placeholder names an absent attribute.
type MissingAttributeError struct {
	Name string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("no attribute named %q is defined", e.Name)
}

type static[T any] struct {
	value T
}

// Static returns an expression that always resolves to value.
func Static[T any](value T) Expression[T] {
	return static[T]{value: value}
}

func (e static[T]) Resolve(*session.Session) (T, error) {
	return e.value, nil
}

type fn[T any] struct {
	f func(*session.Session) (T, error)
}

// Func wraps a total function of the Session.
func Func[T any](f func(*session.Session) T) Expression[T] {
	return fn[T]{f: func(s *session.Session) (T, error) { return f(s), nil }}
}

// FuncErr wraps a function of the Session that may fail.
func FuncErr[T any](f func(*session.Session) (T, error)) Expression[T] {
	return fn[T]{f: f}
}

func (e fn[T]) Resolve(s *session.Session) (T, error) {
	return e.f(s)
}

// Compile turns an EL string into an Expression of type T.
// Syntax errors are reported here, not at resolution time.
func Compile[T any](el string) (Expression[T], error) {
	if strings.Count(el, "#{") != len(placeholder.FindAllStringIndex(el, -1)) {
		return nil, &CompileError{Expression: el, Message: "malformed placeholder"}
	}

	var zero T
	if _, ok := any(zero).(string); ok {
		tpl := compileTemplate(el)
		return any(tpl).(Expression[T]), nil
	}

	program, err := expr.Compile(rewritePlaceholders(el))
	if err != nil {
		return nil, &CompileError{Expression: el, Message: "syntax error", Err: err}
	}
	return compiled[T]{source: el, program: program}, nil
}

// MustCompile is like Compile but panics on error. Intended for static
// scenario definitions in Go code.
func MustCompile[T any](el string) Expression[T] {
	e, err := Compile[T](el)
	if err != nil {
		panic(err)
	}
	return e
}

// rewritePlaceholders turns #{name} into attr("name") so names that are not
// valid identifiers (UUID counter names) still work.
func rewritePlaceholders(el string) string {
	return placeholder.ReplaceAllStringFunc(el, func(m string) string {
		name := strings.TrimSpace(m[2 : len(m)-1])
		return "attr(" + strconv.Quote(name) + ")"
	})
}

type compiled[T any] struct {
	source  string
	program *vm.Program
}

func (e compiled[T]) Resolve(s *session.Session) (T, error) {
	var zero T

	var missing *MissingAttributeError
	env := s.Attributes()
	env["attr"] = func(name string) any {
		v, ok := s.Get(name)
		if !ok && missing == nil {
			missing = &MissingAttributeError{Name: name}
		}
		return v
	}

	out, err := expr.Run(e.program, env)
	if missing != nil {
		return zero, missing
	}
	if err != nil {
		return zero, fmt.Errorf("evaluate %q: %w", e.source, err)
	}
	return cast[T](out)
}

// String returns the EL source.
func (e compiled[T]) String() string {
	return e.source
}

type templatePart struct {
	literal string
	attr    string
}

type template struct {
	source string
	parts  []templatePart
}

func compileTemplate(el string) template {
	t := template{source: el}
	last := 0
	for _, loc := range placeholder.FindAllStringSubmatchIndex(el, -1) {
		if loc[0] > last {
			t.parts = append(t.parts, templatePart{literal: el[last:loc[0]]})
		}
		t.parts = append(t.parts, templatePart{attr: strings.TrimSpace(el[loc[2]:loc[3]])})
		last = loc[1]
	}
	if last < len(el) {
		t.parts = append(t.parts, templatePart{literal: el[last:]})
	}
	return t
}

func (t template) Resolve(s *session.Session) (string, error) {
	var buf strings.Builder
	for _, p := range t.parts {
		if p.attr == "" {
			buf.WriteString(p.literal)
			continue
		}
		v, ok := s.Get(p.attr)
		if !ok {
			return "", &MissingAttributeError{Name: p.attr}
		}
		fmt.Fprint(&buf, v)
	}
	return buf.String(), nil
}

// String returns the EL source.
func (t template) String() string {
	return t.source
}

// cast converts an evaluation result to T, accepting the loose types expr-lang
// and YAML produce (int vs float64, "true" vs true).
func cast[T any](v any) (T, error) {
	var zero T
	if out, ok := v.(T); ok {
		return out, nil
	}

	var converted any
	switch any(zero).(type) {
	case bool:
		if s, ok := v.(string); ok {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return zero, fmt.Errorf("cannot convert %q to bool", s)
			}
			converted = b
		}
	case int:
		switch n := v.(type) {
		case int64:
			converted = int(n)
		case float64:
			if n == float64(int(n)) {
				converted = int(n)
			}
		}
	case float64:
		switch n := v.(type) {
		case int:
			converted = float64(n)
		case int64:
			converted = float64(n)
		}
	case string:
		converted = fmt.Sprint(v)
	}

	if out, ok := converted.(T); ok {
		return out, nil
	}
	return zero, fmt.Errorf("expression produced %T, expected %T", v, zero)
}
