// Package catalog defines the practice test schema served by the Test Repository.
package catalog

import (
	"encoding/json"
	"fmt"
)

// TestDocument is one practice test as returned by the Test Repository
type TestDocument struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Sections    []Section `json:"sections"`

	// Invalid is set when the raw document could not be decoded into the schema.
	// Such documents stay in listings but carry no search index.
	Invalid string `json:"-"`
}

// Section is an ordered group of questions inside a test
type Section struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Question is a single prompt with its optional passage and answer options
type Question struct {
	Question    string   `json:"question"`
	Explanation string   `json:"explanation"`
	Passage     string   `json:"passage"`
	Options     []Option `json:"options"`
}

// Option is one answer choice
type Option struct {
	Content   string `json:"content"`
	IsCorrect bool   `json:"isCorrect"`
}

// UnmarshalJSON accepts both the Mongo style "_id" and a plain "id".
func (t *TestDocument) UnmarshalJSON(data []byte) error {
	type plain TestDocument
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = TestDocument(raw.plain)
	if t.ID == "" {
		t.ID = raw.MongoID
	}
	t.Normalize()
	return nil
}

// Normalize replaces nil slices with empty ones at every level.
func (t *TestDocument) Normalize() {
	if t.Sections == nil {
		t.Sections = []Section{}
	}
	for i := range t.Sections {
		if t.Sections[i].Questions == nil {
			t.Sections[i].Questions = []Question{}
		}
		for j := range t.Sections[i].Questions {
			if t.Sections[i].Questions[j].Options == nil {
				t.Sections[i].Questions[j].Options = []Option{}
			}
		}
	}
}

// QuestionCount returns the number of questions across all sections
func (t TestDocument) QuestionCount() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Questions)
	}
	return n
}

// header is the subset of fields recovered from a document that fails schema decoding
type header struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`
	Title   string `json:"title"`
}

// DecodeTests decodes each raw element in isolation. An element that does not
// fit the schema is kept with whatever id/title could be read and Invalid set.
func DecodeTests(items []json.RawMessage) []TestDocument {
	tests := make([]TestDocument, 0, len(items))
	for i, item := range items {
		var doc TestDocument
		if err := json.Unmarshal(item, &doc); err != nil {
			tests = append(tests, partial(i, item, err))
			continue
		}
		tests = append(tests, doc)
	}
	return tests
}

func partial(pos int, item json.RawMessage, cause error) TestDocument {
	var h header
	_ = json.Unmarshal(item, &h)

	doc := TestDocument{
		ID:       h.ID,
		Title:    h.Title,
		Sections: []Section{},
		Invalid:  fmt.Sprintf("document %d: %v", pos, cause),
	}
	if doc.ID == "" {
		doc.ID = h.MongoID
	}
	return doc
}
