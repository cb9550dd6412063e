package builder

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"

	"github.com/wahaj323/quizengine/internal/quiz"
)

// SchemaVersion is the version written into exported documents. Documents
// with the same major version can be imported.
const SchemaVersion = "v1.1.0"

//go:embed quiz.schema.json
var documentSchema []byte

var (
	// ErrDocument is returned for documents that are not valid JSON or do
	// not match the document schema.
	ErrDocument = errors.New("invalid quiz document")

	// ErrSchemaVersion is returned for documents written by an incompatible
	// version of the format.
	ErrSchemaVersion = errors.New("unsupported schema version")
)

// Document is the portable form of a quiz.
type Document struct {
	SchemaVersion string    `json:"schema_version"`
	ExportedAt    time.Time `json:"exported_at,omitzero"`
	Quiz          quiz.Quiz `json:"quiz"`
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func documentValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(documentSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse document schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://quiz-document.json"
		if err := c.AddResource(url, doc); err != nil {
			compileErr = fmt.Errorf("add document schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}

// Import reads a quiz document, checks it against the document schema and
// its schema version, and returns the quiz with derived fields recomputed.
// The quiz is not validated against a Mode; callers decide how strict to be.
func Import(r io.Reader) (quiz.Quiz, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("read document: %w", err)
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("%w: %v", ErrDocument, err)
	}
	sch, err := documentValidator()
	if err != nil {
		return quiz.Quiz{}, err
	}
	if err := sch.Validate(instance); err != nil {
		return quiz.Quiz{}, fmt.Errorf("%w: %v", ErrDocument, err)
	}

	doc := Document{Quiz: quiz.Quiz{Settings: quiz.DefaultSettings()}}
	if err := json.Unmarshal(data, &doc); err != nil {
		return quiz.Quiz{}, fmt.Errorf("%w: %v", ErrDocument, err)
	}
	if err := CheckVersion(doc.SchemaVersion); err != nil {
		return quiz.Quiz{}, err
	}

	q := doc.Quiz
	q.Recompute()
	return q, nil
}

// Export writes q as an indented document at the current schema version.
func Export(w io.Writer, q quiz.Quiz, now time.Time) error {
	if q.Redacted() {
		return errors.New("export: quiz has no answer key")
	}
	q.Recompute()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{SchemaVersion: SchemaVersion, ExportedAt: now.UTC(), Quiz: q})
}

// CheckVersion accepts versions with the same major version as
// SchemaVersion. The leading "v" is optional.
func CheckVersion(v string) error {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrSchemaVersion, v)
	}
	if semver.Major(v) != semver.Major(SchemaVersion) {
		return fmt.Errorf("%w: %s (this build reads %s.x)", ErrSchemaVersion, v, semver.Major(SchemaVersion))
	}
	return nil
}
