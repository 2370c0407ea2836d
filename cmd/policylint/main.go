// Policylint checks that a policy document conforms to a JSON Schema.
//
// It loads a policy file (YAML or JSON) and a schema file (JSON), delegates
// structural validation to a JSON Schema engine, and reports the outcome as
// an exit code, a one-line summary on stdout, and structured diagnostics on
// stderr.
//
// Usage:
//
//	# Validate a YAML policy
//	policylint policy.yaml schema.json
//
//	# Validate a JSON policy with debug logging
//	policylint policy.json schema.json --format json --log_level DEBUG
//
//	# Machine-readable result for CI
//	policylint policy.yaml schema.json --output json
//
//	# Re-validate on every change
//	policylint watch policy.yaml schema.json
//
//	# Show version information
//	policylint version
package main

func main() {
	Execute()
}
