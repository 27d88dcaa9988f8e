// Package policy models IAM policy documents as plain data.
//
// Every grant in the stack is built here rather than inline in construct
// code, so the no-wildcard scoping contract can be enforced at synth time
// and checked again by the verifier against live policies.
package policy

import (
	"fmt"

	json "github.com/goccy/go-json"
)

const Version = "2012-10-17"

const (
	EffectAllow = "Allow"
	EffectDeny  = "Deny"
)

// StringList is a JSON string-or-list. IAM collapses one-element lists to a
// bare string in stored policies; marshaling always produces the list form.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var single string
		if err := json.Unmarshal(b, &single); err != nil {
			return err
		}
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// Statement is one IAM policy statement. Action and Resource are always
// lists; IAM's singular forms are accepted on read but never produced.
type Statement struct {
	Sid       string                    `json:"Sid,omitempty"`
	Effect    string                    `json:"Effect"`
	Principal map[string]string         `json:"Principal,omitempty"`
	Action    StringList                `json:"Action"`
	Resource  StringList                `json:"Resource"`
	Condition map[string]map[string]any `json:"Condition,omitempty"`
}

// Document is a complete IAM policy document.
type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// NewDocument assembles a document with the fixed policy language version.
func NewDocument(statements ...Statement) Document {
	return Document{
		Version:   Version,
		Statement: statements,
	}
}

// JSON renders the document for storage or verifier comparison.
func (d Document) JSON() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal policy document: %w", err)
	}
	return b, nil
}

// Map renders the document as the generic structure the CDK policy
// constructors ingest.
func (d Document) Map() (map[string]any, error) {
	b, err := d.JSON()
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("unmarshal policy document: %w", err)
	}
	return out, nil
}

// Resources returns the union of resource ARNs across Allow statements.
func (d Document) Resources() []string {
	var out []string
	seen := map[string]bool{}
	for _, stmt := range d.Statement {
		if stmt.Effect != EffectAllow {
			continue
		}
		for _, r := range stmt.Resource {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}
