package scenario

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Error codes for scenario loading failures.
const (
	ErrCodeRead    = "scenario_read"
	ErrCodeSyntax  = "scenario_syntax"
	ErrCodeSchema  = "scenario_schema"
	ErrCodeHorizon = "scenario_horizon"
)

// LoadError is a structured scenario-loading failure: a stable code, a
// human-readable message and, where the CUE evaluator provides one, a source
// position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads a scenario YAML file, validates it against the embedded CUE
// schema and checks that every path spans exactly the declared horizon.
// All failures are fatal: a run never starts on a malformed scenario.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: fmt.Sprintf("reading scenario: %v", err)}
	}
	return Parse(path, data)
}

// Parse validates and decodes scenario bytes. The filename is only used in
// error positions.
func Parse(filename string, data []byte) (*Scenario, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).
		LookupPath(cue.ParsePath("#Scenario"))
	if err := schema.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("compiling schema: %v", err)}
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return nil, cueError(ErrCodeSyntax, err)
	}
	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return nil, cueError(ErrCodeSyntax, err)
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true), cue.Final()); err != nil {
		return nil, cueError(ErrCodeSchema, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &LoadError{Code: ErrCodeSyntax, Message: fmt.Sprintf("decoding scenario: %v", err)}
	}

	for name, path := range sc.Paths {
		if len(path) != sc.HorizonDays {
			return nil, &LoadError{
				Code: ErrCodeHorizon,
				Message: fmt.Sprintf("path %q has %d entries, horizon_days is %d",
					name, len(path), sc.HorizonDays),
			}
		}
	}
	return &sc, nil
}

func cueError(code string, err error) *LoadError {
	le := &LoadError{Code: code, Message: cueerrors.Details(err, nil)}
	if positions := cueerrors.Positions(cueerrors.Promote(err, "")); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
