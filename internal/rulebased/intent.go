package rulebased

import "portfolio-assistant/internal/keyword"

// Intent is the topical category of a message.
type Intent string

const (
	IntentGreeting   Intent = "greeting"
	IntentSkills     Intent = "skills"
	IntentProjects   Intent = "projects"
	IntentExperience Intent = "experience"
	IntentContact    Intent = "contact"
	IntentEducation  Intent = "education"
	IntentAbout      Intent = "about"
	IntentDefault    Intent = "default"
)

type intentRule struct {
	intent   Intent
	keywords keyword.Set
}

// intentRules is evaluated top to bottom; the first matching rule wins.
var intentRules = []intentRule{
	{IntentGreeting, keyword.Set{"hello", "hi", "hey", "greetings", "good morning", "good afternoon", "good evening"}},
	{IntentSkills, keyword.Set{"skill*", "technolog*", "programming", "language*", "framework*", "tool*", "technical", "expertise"}},
	{IntentProjects, keyword.Set{"project*", "work", "portfolio", "built", "created", "developed", "github", "repo*", "show me"}},
	{IntentExperience, keyword.Set{"experience*", "job*", "career", "work history", "employment", "professional"}},
	{IntentContact, keyword.Set{"contact*", "email*", "e mail", "phone", "reach", "connect", "linkedin", "social"}},
	{IntentEducation, keyword.Set{"education", "degree*", "universit*", "college", "study", "studies", "academic*"}},
	{IntentAbout, keyword.Set{"about", "who is", "tell me", "background", "bio", "story"}},
}

// Classify returns the intent of message. It is deterministic and depends
// only on the words of the message.
func Classify(message string) Intent {
	words := keyword.Words(message)
	for _, r := range intentRules {
		if r.keywords.MatchWords(words) {
			return r.intent
		}
	}
	return IntentDefault
}

// dataBacked reports whether the intent's reply appends a portfolio section.
func dataBacked(intent Intent) bool {
	switch intent {
	case IntentSkills, IntentProjects, IntentExperience, IntentContact:
		return true
	}
	return false
}
