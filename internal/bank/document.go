// Package bank loads and validates question bank documents.
package bank

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"intellitest/internal/domain"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://question-bank.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// document mirrors the on-disk bank format. YAML is a superset of JSON, so
// both encodings decode through it.
type document struct {
	TestID   string             `yaml:"test_id" json:"test_id"`
	Sections map[string]section `yaml:"sections" json:"sections"`
}

type section struct {
	Questions []domain.Question `yaml:"questions" json:"questions"`
}

// SectionKey is the document key holding a domain's questions.
func SectionKey(d domain.Domain) string {
	return string(d) + "_reasoning"
}

// Parse decodes a bank document, validates it against the bank schema and
// checks its integrity. Every failure is a *domain.DataIntegrityError.
func Parse(raw []byte) (domain.QuestionBank, error) {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return domain.QuestionBank{}, &domain.DataIntegrityError{Reason: "decode: " + err.Error()}
	}
	if err := validateSchema(generic); err != nil {
		return domain.QuestionBank{}, &domain.DataIntegrityError{BankID: idOf(generic), Reason: err.Error()}
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return domain.QuestionBank{}, &domain.DataIntegrityError{Reason: "decode: " + err.Error()}
	}

	bank := domain.QuestionBank{ID: doc.TestID, Sections: make(map[domain.Domain][]domain.Question, len(domain.Domains))}
	for _, d := range domain.Domains {
		questions := doc.Sections[SectionKey(d)].Questions
		out := make([]domain.Question, len(questions))
		for i, q := range questions {
			if q.Domain == "" {
				q.Domain = d
			}
			out[i] = q
		}
		bank.Sections[d] = out
	}
	if err := CheckIntegrity(bank); err != nil {
		return domain.QuestionBank{}, err
	}
	return bank, nil
}

// Encode renders a bank back into its document form as JSON.
func Encode(bank domain.QuestionBank) ([]byte, error) {
	doc := document{TestID: bank.ID, Sections: make(map[string]section, len(domain.Domains))}
	for _, d := range domain.Domains {
		doc.Sections[SectionKey(d)] = section{Questions: bank.Sections[d]}
	}
	return json.Marshal(doc)
}

// CheckIntegrity verifies that every domain bucket is present and that every
// question has four distinct options, one of which is the correct answer.
func CheckIntegrity(bank domain.QuestionBank) error {
	fail := func(format string, args ...any) error {
		return &domain.DataIntegrityError{BankID: bank.ID, Reason: fmt.Sprintf(format, args...)}
	}
	if bank.ID == "" {
		return fail("missing test id")
	}
	for _, d := range domain.Domains {
		questions, ok := bank.Sections[d]
		if !ok || len(questions) == 0 {
			return fail("missing %s section", d)
		}
		for i, q := range questions {
			if q.Text == "" {
				return fail("%s question %d has no text", d, i)
			}
			if q.Domain != d {
				return fail("%s question %d is tagged %q", d, i, q.Domain)
			}
			if len(q.Options) != domain.OptionsPerQuestion {
				return fail("%s question %d has %d options", d, i, len(q.Options))
			}
			if q.CorrectAnswer == "" {
				return fail("%s question %d has no correct answer", d, i)
			}
			seen := make(map[string]bool, len(q.Options))
			for _, opt := range q.Options {
				if seen[opt] {
					return fail("%s question %d repeats option %q", d, i, opt)
				}
				seen[opt] = true
			}
			if !seen[q.CorrectAnswer] {
				return fail("%s question %d correct answer %q is not an option", d, i, q.CorrectAnswer)
			}
		}
	}
	return nil
}

func validateSchema(generic any) error {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse bank schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add bank schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	if schemaErr != nil {
		return schemaErr
	}

	// Round-trip through encoding/json so the validator sees plain JSON values.
	raw, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func idOf(generic any) string {
	m, ok := generic.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := m["test_id"].(string)
	return id
}
