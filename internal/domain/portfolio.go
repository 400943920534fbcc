package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Portfolio is the structured document the assistant answers questions
// about. It is loaded once and treated as read-only afterwards. Nil slices
// and pointers mean the section is absent from the document.
type Portfolio struct {
	Profile      *Profile      `json:"profile,omitempty"`
	Skills       *Skills       `json:"skills,omitempty"`
	Projects     []Project     `json:"projects,omitempty"`
	Experience   []Experience  `json:"experience,omitempty"`
	Contact      Fields        `json:"contact,omitempty"`
	Achievements *Achievements `json:"achievements,omitempty"`
}

type Profile struct {
	Name      string          `json:"name,omitempty"`
	Title     string          `json:"title,omitempty"`
	Bio       string          `json:"bio,omitempty"`
	Education json.RawMessage `json:"education,omitempty"`
}

// Skills is either a flat list or an ordered map of category to skills.
type Skills struct {
	List       []string
	Categories Fields
}

func (s *Skills) UnmarshalJSON(b []byte) error {
	switch firstByte(b) {
	case '[':
		var items []Text
		if err := json.Unmarshal(b, &items); err != nil {
			return fmt.Errorf("domain: decode skills list: %w", err)
		}
		s.List = make([]string, 0, len(items))
		for _, it := range items {
			s.List = append(s.List, string(it))
		}
		s.Categories = nil
		return nil
	case '{':
		s.List = nil
		return s.Categories.UnmarshalJSON(b)
	default:
		return errors.New("domain: skills must be a list or an object")
	}
}

func (s Skills) MarshalJSON() ([]byte, error) {
	if s.Categories != nil {
		return s.Categories.MarshalJSON()
	}
	return json.Marshal(s.List)
}

type Project struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	LiveDemo    string `json:"live_demo,omitempty"`
	TechStack   Text   `json:"tech_stack,omitempty"`
	GitHub      string `json:"github,omitempty"`

	// Plain is set when the document listed the project as a bare string.
	Plain bool `json:"-"`
}

func (p *Project) UnmarshalJSON(b []byte) error {
	if firstByte(b) == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*p = Project{Name: name, Plain: true}
		return nil
	}
	type plain Project
	var out plain
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("domain: decode project: %w", err)
	}
	*p = Project(out)
	return nil
}

// Experience accepts both title/company/duration and
// position/organization/period spellings.
type Experience struct {
	Title        string `json:"title,omitempty"`
	Position     string `json:"position,omitempty"`
	Company      string `json:"company,omitempty"`
	Organization string `json:"organization,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Period       string `json:"period,omitempty"`
	Description  string `json:"description,omitempty"`

	Plain bool `json:"-"`
}

func (e *Experience) UnmarshalJSON(b []byte) error {
	if firstByte(b) == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = Experience{Title: s, Plain: true}
		return nil
	}
	type plain Experience
	var out plain
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("domain: decode experience: %w", err)
	}
	*e = Experience(out)
	return nil
}

func (e Experience) Role() string {
	return firstNonEmpty(e.Title, e.Position, "Position")
}

func (e Experience) Employer() string {
	return firstNonEmpty(e.Company, e.Organization, "Company")
}

func (e Experience) When() string {
	return firstNonEmpty(e.Duration, e.Period)
}

type Achievements struct {
	LeetCode   *LeetCode         `json:"leetcode,omitempty"`
	Hackathons []json.RawMessage `json:"hackathons,omitempty"`
}

type LeetCode struct {
	ProblemsSolved any    `json:"problems_solved,omitempty"`
	ContestRating  any    `json:"contest_rating,omitempty"`
	ProfileURL     string `json:"profile_url,omitempty"`
}

// Field is one key/value pair of an ordered JSON object.
type Field struct {
	Key   string
	Value string
}

// Fields is a JSON object decoded with its key order preserved. Non-string
// values are flattened to text.
type Fields []Field

func (f *Fields) UnmarshalJSON(b []byte) error {
	if firstByte(b) == 'n' {
		*f = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("domain: decode object: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("domain: expected JSON object")
	}
	out := Fields{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("domain: decode object key: %w", err)
		}
		key, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("domain: decode value of %q: %w", key, err)
		}
		out = append(out, Field{Key: key, Value: flatten(raw)})
	}
	*f = out
	return nil
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value for key, compared case-insensitively.
func (f Fields) Get(key string) string {
	for _, field := range f {
		if strings.EqualFold(field.Key, key) {
			return field.Value
		}
	}
	return ""
}

// Text is a string that may be written in JSON as a string or as a list of
// strings; lists are joined with ", ".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text(flatten(b))
	return nil
}

func flatten(raw json.RawMessage) string {
	switch firstByte(raw) {
	case 'n':
		return ""
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '[':
		var items []any
		if err := json.Unmarshal(raw, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				parts = append(parts, fmt.Sprint(it))
			}
			return strings.Join(parts, ", ")
		}
	}
	return strings.TrimSpace(string(raw))
}

func firstByte(b []byte) byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
