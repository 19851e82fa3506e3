package scenario

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaVal  cue.Value
	schemaErr  error
)

// CUE values are not safe for concurrent use, so validation is serialised.
var schemaMu sync.Mutex

func schema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile scenario schema: %w", err)
			return
		}
		schemaVal = v.LookupPath(cue.ParsePath("#Scenario"))
	})
	return schemaCtx, schemaVal, schemaErr
}

// ValidateSchema checks a decoded YAML document against the scenario schema.
// It returns one ValidationError per distinct problem, sorted by field.
func ValidateSchema(doc any) ValidationErrors {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	ctx, s, err := schema()
	if err != nil {
		return ValidationErrors{{Code: ErrSchema, Message: err.Error()}}
	}

	data := ctx.Encode(doc)
	if err := data.Err(); err != nil {
		return ValidationErrors{{Code: ErrSchema, Message: err.Error()}}
	}

	err = s.Unify(data).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	seen := make(map[string]bool)
	var out ValidationErrors
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		ve := ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
			Code:    ErrSchema,
		}
		key := ve.Field + "\x00" + ve.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ve)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}
