/*
Package policy loads policy documents and JSON Schema documents from disk and
checks the former against the latter.

The package has three pieces:

  - Loader reads a policy file (YAML or JSON) or a schema file (always JSON)
    and returns it as a generic string-keyed Document. Loading fails distinctly
    for a missing file, a syntax error, and a document whose root is not a
    mapping.

  - Validator checks a loaded policy Document against a loaded schema Document.
    The structural check itself is delegated entirely to the
    github.com/xeipuuv/gojsonschema engine; Validator only adapts its result
    into this package's error taxonomy.

  - Error carries a Kind tag (KindNotFound, KindParse, KindInvalidArgument,
    KindInvalidShape, KindConformance, KindUnexpected) so that callers can
    dispatch on the failure category without string matching.

Every operation logs its own diagnostic at the point of failure and then
returns the error unrecovered; recovery and user-facing messaging belong to
the caller.
*/
package policy
