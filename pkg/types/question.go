// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// QuestionSet is one BioASQ-style corpus file: a flat list of questions.
type QuestionSet struct {
	Questions []Question `json:"questions"`
}

// Question is a single entry of the question corpus. Documents holds
// PubMed reference URLs; Snippets and IdealAnswer are carried through
// to the assembled dataset untouched.
type Question struct {
	ID        string   `json:"id"`
	Body      string   `json:"body"`
	Type      string   `json:"type"`
	Documents []string `json:"documents"`

	// IdealAnswer is a string in some corpus files and a list of
	// strings in others, so it is kept raw until assembly.
	IdealAnswer json.RawMessage `json:"ideal_answer"`

	// Snippets are passed through verbatim; their inner structure is
	// not interpreted by any stage.
	Snippets []json.RawMessage `json:"snippets"`
}
