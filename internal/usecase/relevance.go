package usecase

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/keyword"
)

const (
	maxPromptProjects   = 4
	maxPromptHackathons = 2
	maxProfileBio       = 200
)

var (
	projectWords     = keyword.Set{"project*", "work*", "portfolio*", "built", "creat*", "develop*", "github", "repo*"}
	gratitudeWords   = keyword.Set{"bye", "goodbye", "see you", "thanks", "thank you"}
	skillWords       = keyword.Set{"skill*", "technolog*", "programming", "language*", "framework*", "tool*", "tech*"}
	contactWords     = keyword.Set{"contact*", "email*", "phone*", "reach", "connect*", "linkedin"}
	backgroundWords  = keyword.Set{"experience*", "education*", "degree*", "universit*", "background*"}
	achievementWords = keyword.Set{"achievement*", "leetcode", "hackathon*", "contest*", "accomplishment*"}
	farewellWords    = keyword.Set{"bye", "goodbye", "see you", "farewell", "take care", "later"}
)

// relevantData selects the portfolio sections that match the question and
// renders them as labelled JSON blocks for the generator prompt.
func relevantData(question string, p *domain.Portfolio, pe domain.Persona) string {
	if p == nil {
		return "No portfolio data available."
	}
	words := keyword.Words(question)

	var sections []string
	if projectWords.MatchWords(words) && !gratitudeWords.MatchWords(words) {
		if len(p.Projects) > 0 {
			projects := p.Projects
			if len(projects) > maxPromptProjects {
				projects = projects[:maxPromptProjects]
			}
			sections = append(sections, section("PROJECTS", projects))
		} else {
			sections = append(sections, "PROJECTS: No detailed project data available.")
		}
	}
	if skillWords.MatchWords(words) && p.Skills != nil {
		sections = append(sections, section("SKILLS", p.Skills))
	}
	if contactWords.MatchWords(words) {
		if c := contactFields(p.Contact, pe); len(c) > 0 {
			sections = append(sections, section("CONTACT", c))
		}
	}
	if backgroundWords.MatchWords(words) && p.Profile != nil {
		sections = append(sections, section("BACKGROUND", background(p.Profile)))
	}
	if achievementWords.MatchWords(words) && p.Achievements != nil {
		sections = append(sections, section("ACHIEVEMENTS", limitAchievements(p.Achievements)))
	}
	if farewellWords.MatchWords(words) {
		sections = append(sections, section("FAREWELL", map[string]string{
			"message_type":   "farewell",
			"response_style": "brief and friendly",
		}))
	}

	if len(sections) == 0 && p.Profile != nil {
		sections = append(sections, section("PROFILE", struct {
			Name  string `json:"name"`
			Title string `json:"title"`
			Bio   string `json:"bio"`
		}{p.Profile.Name, p.Profile.Title, truncateRunes(p.Profile.Bio, maxProfileBio) + "..."}))
	}
	if len(sections) == 0 {
		return "Basic portfolio information available."
	}
	return strings.Join(sections, "\n\n")
}

func section(label string, v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return label + ": unavailable"
	}
	return label + ": " + string(b)
}

// contactFields lists the persona's contact details first, then any other
// fields from the document.
func contactFields(contact domain.Fields, pe domain.Persona) domain.Fields {
	var out domain.Fields
	add := func(k, v string) {
		if strings.TrimSpace(v) != "" && out.Get(k) == "" {
			out = append(out, domain.Field{Key: k, Value: v})
		}
	}
	add("email", pe.Email)
	add("phone", pe.Phone)
	add("linkedin", pe.LinkedIn)
	add("github", pe.GitHub)
	for _, f := range contact {
		add(strings.ToLower(f.Key), f.Value)
	}
	return out
}

type backgroundInfo struct {
	Education json.RawMessage `json:"education"`
	Bio       string          `json:"bio"`
	Title     string          `json:"title"`
}

func background(p *domain.Profile) backgroundInfo {
	edu := p.Education
	if len(edu) == 0 || !json.Valid(edu) {
		edu = json.RawMessage(`{}`)
	}
	return backgroundInfo{Education: edu, Bio: p.Bio, Title: p.Title}
}

func limitAchievements(a *domain.Achievements) domain.Achievements {
	out := domain.Achievements{LeetCode: a.LeetCode, Hackathons: a.Hackathons}
	if len(out.Hackathons) > maxPromptHackathons {
		out.Hackathons = out.Hackathons[:maxPromptHackathons]
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
