package domain

import "strings"

const (
	DefaultAssistantName = "Portfolio Assistant"
	DefaultOwnerName     = "the portfolio owner"
)

// Persona names the assistant and the person it speaks about, and carries
// the contact details quoted by static and emergency replies.
type Persona struct {
	AssistantName string
	OwnerName     string
	Email         string
	Phone         string
	LinkedIn      string
	GitHub        string
}

// Complete fills empty persona fields from the portfolio document, then
// from package defaults. p may be nil.
func (pe Persona) Complete(p *Portfolio) Persona {
	if p != nil {
		if p.Profile != nil {
			pe.OwnerName = orDefault(pe.OwnerName, p.Profile.Name)
		}
		pe.Email = orDefault(pe.Email, p.Contact.Get("email"))
		pe.Phone = orDefault(pe.Phone, p.Contact.Get("phone"))
		pe.LinkedIn = orDefault(pe.LinkedIn, p.Contact.Get("linkedin"))
		pe.GitHub = orDefault(pe.GitHub, p.Contact.Get("github"))
	}
	pe.AssistantName = orDefault(pe.AssistantName, DefaultAssistantName)
	pe.OwnerName = orDefault(pe.OwnerName, DefaultOwnerName)
	return pe
}

// Possessive returns the owner name with an English possessive suffix.
func (pe Persona) Possessive() string {
	name := orDefault(pe.OwnerName, DefaultOwnerName)
	if strings.HasSuffix(name, "s") {
		return name + "'"
	}
	return name + "'s"
}

// ContactLines renders the known contact details as bullet lines.
func (pe Persona) ContactLines() []string {
	var lines []string
	if pe.Email != "" {
		lines = append(lines, "• Email: "+pe.Email)
	}
	if pe.Phone != "" {
		lines = append(lines, "• Phone: "+pe.Phone)
	}
	if pe.LinkedIn != "" {
		lines = append(lines, "• LinkedIn: "+pe.LinkedIn)
	}
	if pe.GitHub != "" {
		lines = append(lines, "• GitHub: "+pe.GitHub)
	}
	return lines
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}
