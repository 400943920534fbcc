package rulebased

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"portfolio-assistant/internal/domain"
)

const maxProjects = 4

// Extractor renders the portfolio section backing a data-backed intent.
// It returns an error wrapping domain.ErrDataUnavailable when the section is
// missing or empty.
type Extractor func(intent Intent, p *domain.Portfolio, pe domain.Persona) (string, error)

// Extract is the default Extractor.
func Extract(intent Intent, p *domain.Portfolio, pe domain.Persona) (string, error) {
	if p == nil {
		return "", domain.ErrDataUnavailable
	}
	switch intent {
	case IntentSkills:
		return extractSkills(p.Skills, pe)
	case IntentProjects:
		return extractProjects(p.Projects, pe)
	case IntentExperience:
		return extractExperience(p.Experience, pe)
	case IntentContact:
		return extractContact(p.Contact, pe)
	}
	return "", fmt.Errorf("%w: no section for intent %q", domain.ErrDataUnavailable, intent)
}

func extractSkills(s *domain.Skills, pe domain.Persona) (string, error) {
	if s == nil {
		return "", fmt.Errorf("%w: skills", domain.ErrDataUnavailable)
	}
	var b strings.Builder
	switch {
	case len(s.List) > 0:
		fmt.Fprintf(&b, "Here are %s key skills:\n\n", pe.Possessive())
		for i, skill := range s.List {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("• **" + skill + "**")
		}
	case len(s.Categories) > 0:
		fmt.Fprintf(&b, "Here's a breakdown of %s expertise:\n", pe.Possessive())
		for _, f := range s.Categories {
			b.WriteString("\n• **" + titleCase(f.Key) + "**: " + f.Value)
		}
	default:
		return "", fmt.Errorf("%w: skills", domain.ErrDataUnavailable)
	}
	b.WriteString("\n\nWould you like to know more about experience with any of these technologies?")
	return b.String(), nil
}

func extractProjects(projects []domain.Project, pe domain.Persona) (string, error) {
	if len(projects) == 0 {
		return "", fmt.Errorf("%w: projects", domain.ErrDataUnavailable)
	}
	if len(projects) > maxProjects {
		projects = projects[:maxProjects]
	}
	entries := make([]string, 0, len(projects))
	for i, p := range projects {
		name := p.Name
		if name == "" {
			name = "Unnamed Project"
		}
		if p.Plain {
			entries = append(entries, fmt.Sprintf("%d. **%s**", i+1, name))
			continue
		}
		desc := p.Description
		if desc == "" {
			desc = "A project showcasing technical expertise"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%d. **%s**", i+1, name)
		if p.LiveDemo != "" {
			b.WriteString(" - " + truncate(desc, 80))
			b.WriteString("\n   * Live Demo: " + p.LiveDemo)
		} else {
			b.WriteString(" - " + truncate(desc, 100))
		}
		if p.TechStack != "" {
			b.WriteString("\n   * Tech: " + string(p.TechStack))
		}
		if p.GitHub != "" {
			b.WriteString("\n   * Code: " + p.GitHub)
		}
		entries = append(entries, b.String())
	}
	return fmt.Sprintf("Here are %s key projects:\n\n%s", pe.Possessive(), strings.Join(entries, "\n\n")), nil
}

func extractExperience(exp []domain.Experience, pe domain.Persona) (string, error) {
	if len(exp) == 0 {
		return "", fmt.Errorf("%w: experience", domain.ErrDataUnavailable)
	}
	entries := make([]string, 0, len(exp))
	for i, e := range exp {
		if e.Plain {
			entries = append(entries, fmt.Sprintf("%d. %s", i+1, e.Title))
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%d. **%s** at %s", i+1, e.Role(), e.Employer())
		if when := e.When(); when != "" {
			b.WriteString(" (" + when + ")")
		}
		if e.Description != "" {
			b.WriteString("\n• " + e.Description)
		}
		entries = append(entries, b.String())
	}
	return fmt.Sprintf("%s professional experience:\n\n%s", pe.Possessive(), strings.Join(entries, "\n\n")), nil
}

var contactLabels = map[string]string{
	"email":    "Email",
	"phone":    "Phone",
	"linkedin": "LinkedIn",
	"github":   "GitHub",
	"leetcode": "LeetCode",
}

func extractContact(contact domain.Fields, pe domain.Persona) (string, error) {
	var lines []string
	for _, f := range contact {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		label, ok := contactLabels[strings.ToLower(f.Key)]
		if !ok {
			label = titleCase(f.Key)
		}
		lines = append(lines, "• **"+label+"**: "+f.Value)
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: contact", domain.ErrDataUnavailable)
	}
	return fmt.Sprintf("Here's how to contact %s:\n\n%s", pe.OwnerName, strings.Join(lines, "\n")), nil
}

// truncate cuts s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n])) + "..."
}

// titleCase turns "web_development" into "Web Development".
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || unicode.IsSpace(r) })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
