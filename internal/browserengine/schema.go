package browserengine

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/raw-violation-v1.schema.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	compiled   *jsonschema.Schema
	compileErr error
)

// violationSchema compiles the embedded raw-violation schema once,
// mirroring a schemavalidation package built around jsonschema.Compiler (AddResource
// + Compile against a fixture), but embedding the schema so the running
// binary doesn't depend on a docs/ checkout being present.
func violationSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		data, err := schemaFS.ReadFile("schema/raw-violation-v1.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("browserengine: read embedded schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		const id = "raw-violation-v1.schema.json"
		if err := compiler.AddResource(id, bytes.NewReader(data)); err != nil {
			compileErr = fmt.Errorf("browserengine: add schema resource: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(id)
	})
	return compiled, compileErr
}

// validateRaw validates a single decoded JSON value (as produced by
// json.Unmarshal into any) against the RawViolation schema. A validation
// failure is reported to the caller as a parse-equivalent error per
// spec §7; the caller treats it as "no new data this cycle", not a
// fatal condition.
func validateRaw(v any) error {
	schema, err := violationSchema()
	if err != nil {
		return err
	}
	return schema.Validate(v)
}
