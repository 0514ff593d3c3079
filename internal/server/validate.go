package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON schema for a request body.
type Schema struct {
	Name       string
	Definition map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// compile builds the schema on first use and keeps the result, errors included.
func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		// AddResource needs plain decoded JSON, not []string and friends.
		raw, err := json.Marshal(s.Definition)
		if err != nil {
			s.err = fmt.Errorf("marshal schema %s: %w", s.Name, err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			s.err = fmt.Errorf("parse schema %s: %w", s.Name, err)
			return
		}

		c := jsonschema.NewCompiler()
		url := "schema://" + s.Name + ".json"
		if err := c.AddResource(url, doc); err != nil {
			s.err = fmt.Errorf("add schema %s: %w", s.Name, err)
			return
		}
		s.compiled, s.err = c.Compile(url)
	})
	return s.compiled, s.err
}

// decodeBody reads at most maxBodyBytes of the request body, checks it
// against schema and decodes it into v. Malformed or non-conforming bodies
// yield *ErrInvalidRequest.
func decodeBody(r *http.Request, schema *Schema, v any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return &ErrInvalidRequest{Err: fmt.Errorf("read body: %w", err)}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidRequest{Body: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := schema.compile()
	if err != nil {
		return err
	}
	if err := compiled.Validate(doc); err != nil {
		return &ErrInvalidRequest{Body: raw, Err: err}
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return &ErrInvalidRequest{Body: raw, Err: err}
	}
	return nil
}
