package rulebased

import (
	"fmt"
	"strings"

	"portfolio-assistant/internal/domain"
)

// defaultTemplates returns the reply openers per intent. Only the first
// template of each intent is used; the rest document alternative phrasings.
func defaultTemplates(pe domain.Persona) map[Intent][]string {
	owner, poss, bot := pe.OwnerName, pe.Possessive(), pe.AssistantName
	return map[Intent][]string{
		IntentGreeting: {
			fmt.Sprintf("Hello! I'm %s, %s personal assistant. I'd be happy to help you learn more about %s professional journey and expertise. What would you like to know?", bot, poss, poss),
			fmt.Sprintf("Hi there! I'm %s, and I'm here to share everything about %s portfolio and achievements. How can I assist you today?", bot, poss),
		},
		IntentSkills: {
			fmt.Sprintf("I'd be delighted to share information about %s technical skills and areas of expertise.", poss),
			fmt.Sprintf("%s has developed a diverse skill set. Let me break down those technical capabilities for you.", owner),
		},
		IntentProjects: {
			fmt.Sprintf("%s has built some impressive projects. Here they are:", owner),
		},
		IntentExperience: {
			fmt.Sprintf("I'd be happy to tell you about %s professional experience and career accomplishments.", poss),
		},
		IntentContact: {
			fmt.Sprintf("I'd be happy to provide you with %s contact information for professional opportunities and collaborations.", poss),
		},
		IntentEducation: {
			fmt.Sprintf("I'd be delighted to share information about %s educational background and academic achievements.", poss),
		},
		IntentAbout: {
			fmt.Sprintf("I'd love to tell you about %s: background, passions, and what drives the work.", owner),
		},
		IntentDefault: {
			"That's an interesting question! I might not have that exact information, but here is what I can help with.",
		},
	}
}

func suggestions(pe domain.Persona) string {
	return strings.Join([]string{
		"I can help you learn about:",
		fmt.Sprintf("• %s technical skills and expertise", pe.Possessive()),
		fmt.Sprintf("• Projects %s has worked on", pe.OwnerName),
		"• Professional experience",
		fmt.Sprintf("• How to contact %s", pe.OwnerName),
		"",
		"What would you like to know more about?",
	}, "\n")
}

// staticFallback is the small embedded text used when a data-backed
// extraction fails. Empty means the template stands alone.
func staticFallback(intent Intent, pe domain.Persona) string {
	switch intent {
	case IntentContact:
		lines := pe.ContactLines()
		if len(lines) == 0 {
			return ""
		}
		return fmt.Sprintf("You can reach %s at:\n%s", pe.OwnerName, strings.Join(lines, "\n"))
	case IntentSkills:
		return fmt.Sprintf("%s works across:\n• Programming languages\n• Web development frameworks\n• Databases\n• Data structures, algorithms and system design", pe.OwnerName)
	case IntentProjects:
		text := fmt.Sprintf("%s has worked on various projects including web applications, chatbots, and data analysis tools.", pe.OwnerName)
		if pe.GitHub != "" {
			text += " You can find the work on GitHub: " + pe.GitHub
		}
		return text
	}
	return ""
}

func welcome(pe domain.Persona) string {
	return fmt.Sprintf("Hello! I'm %s, %s personal assistant. How can I help you learn more about %s portfolio and expertise?",
		pe.AssistantName, pe.Possessive(), pe.Possessive())
}

// emergencyText is the unconditional last-level reply. It only concatenates
// strings so it cannot fail.
func emergencyText(pe domain.Persona) string {
	var b strings.Builder
	b.WriteString("I'm " + pe.AssistantName + ", " + pe.Possessive() + " personal assistant! ")
	b.WriteString("I'm experiencing some technical difficulties, but I can still help you.\n\n")
	if lines := pe.ContactLines(); len(lines) > 0 {
		b.WriteString("You can reach " + pe.OwnerName + " directly:\n\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("Please try asking your question again, and I'll do my best to share details about projects, skills, and achievements!")
	return b.String()
}
