package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-assistant/internal/domain"
)

var generatorSettings = ModelSettings{Model: "gen-model", MaxTokens: 1500, Temperature: 0.7, TopP: 0.9, Timeout: 15 * time.Second}

func samplePortfolio() *domain.Portfolio {
	return &domain.Portfolio{
		Profile: &domain.Profile{
			Name:      "Ada",
			Title:     "Engineer",
			Bio:       strings.Repeat("b", 250),
			Education: json.RawMessage(`{"degree":"BSc"}`),
		},
		Skills: &domain.Skills{List: []string{"Go", "SQL"}},
		Projects: []domain.Project{
			{Name: "P1"}, {Name: "P2"}, {Name: "P3"}, {Name: "P4"}, {Name: "P5"},
		},
		Contact: domain.Fields{{Key: "email", Value: "ada@example.com"}, {Key: "Twitter", Value: "@ada"}},
		Achievements: &domain.Achievements{
			LeetCode:   &domain.LeetCode{ProblemsSolved: 500, ProfileURL: "https://leetcode.com/ada"},
			Hackathons: []json.RawMessage{json.RawMessage(`"H1"`), json.RawMessage(`"H2"`), json.RawMessage(`"H3"`)},
		},
	}
}

// ---------------------------------------------------------------------------
// Generate
// ---------------------------------------------------------------------------

func TestNewGenerator_Validation(t *testing.T) {
	_, err := NewGenerator(nil, nil, domain.Persona{}, generatorSettings)
	require.Error(t, err)

	_, err = NewGenerator(&fakeCompleter{}, nil, domain.Persona{}, ModelSettings{})
	require.Error(t, err)
}

func TestGenerate_BlankQuestion(t *testing.T) {
	llm := &fakeCompleter{replies: []completion{{out: "x"}}}
	g, err := NewGenerator(llm, samplePortfolio(), domain.Persona{}, generatorSettings)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "  ", "hi")
	requireCode(t, err, ErrorInvalidInput)
	require.Empty(t, llm.requests)
}

func TestGenerate_RequestShape(t *testing.T) {
	llm := &fakeCompleter{replies: []completion{{out: "  Ada knows Go.  "}}}
	g, err := NewGenerator(llm, samplePortfolio(), domain.Persona{}, generatorSettings)
	require.NoError(t, err)

	got, err := g.Generate(context.Background(), "What are Ada's skills?", "skills")
	require.NoError(t, err)
	require.Equal(t, "Ada knows Go.", got)

	req := llm.requests[0]
	require.Equal(t, "gen-model", req.Model)
	require.Equal(t, 1500, req.MaxTokens)
	require.InDelta(t, 0.7, *req.Temperature, 1e-9)
	require.InDelta(t, 0.9, *req.TopP, 1e-9)
	require.Len(t, req.Messages, 3)
	require.Equal(t, "system", req.Messages[0].Role)
	require.Contains(t, req.Messages[0].Content, "RELEVANT DATA FOR THIS QUESTION:")
	require.Contains(t, req.Messages[0].Content, "SKILLS:")
	require.Contains(t, req.Messages[0].Content, "Never add periods or other punctuation after URLs")
	require.Equal(t, domain.ChatMessage{Role: "user", Content: "What are Ada's skills?"}, req.Messages[1])
	require.Equal(t, "system", req.Messages[2].Role)
	require.Equal(t, "Note: The user originally asked 'skills' which was enhanced to 'What are Ada's skills?' for better context.", req.Messages[2].Content)
	require.True(t, llm.deadlines[0])
}

func TestGenerate_NoNoteWhenUnchanged(t *testing.T) {
	llm := &fakeCompleter{replies: []completion{{out: "ok"}}}
	g, err := NewGenerator(llm, samplePortfolio(), domain.Persona{}, generatorSettings)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "skills", "skills")
	require.NoError(t, err)
	require.Len(t, llm.requests[0].Messages, 2)
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	llm := &fakeCompleter{replies: []completion{{out: "   "}}}
	g, err := NewGenerator(llm, nil, domain.Persona{}, generatorSettings)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "hi", "hi")
	requireCode(t, err, ErrorUpstream)
}

func TestGenerate_Unavailable(t *testing.T) {
	llm := &fakeCompleter{unavailable: true}
	g, err := NewGenerator(llm, nil, domain.Persona{}, generatorSettings)
	require.NoError(t, err)
	require.False(t, g.Available())

	_, err = g.Generate(context.Background(), "hi", "hi")
	requireCode(t, err, ErrorUpstream)
}

// ---------------------------------------------------------------------------
// relevantData
// ---------------------------------------------------------------------------

func TestRelevantData_NoData(t *testing.T) {
	require.Equal(t, "No portfolio data available.", relevantData("anything", nil, domain.Persona{}))
}

func TestRelevantData_ProjectsLimited(t *testing.T) {
	got := relevantData("show me the projects", samplePortfolio(), domain.Persona{})
	require.True(t, strings.HasPrefix(got, "PROJECTS: "))
	require.Contains(t, got, `"P4"`)
	require.NotContains(t, got, `"P5"`)
}

func TestRelevantData_ProjectsSuppressedByThanks(t *testing.T) {
	got := relevantData("thanks for showing the projects", samplePortfolio(), domain.Persona{})
	require.NotContains(t, got, "PROJECTS")
}

func TestRelevantData_ProjectsMissing(t *testing.T) {
	p := samplePortfolio()
	p.Projects = nil
	got := relevantData("what has Ada built", p, domain.Persona{})
	require.Contains(t, got, "PROJECTS: No detailed project data available.")
}

func TestRelevantData_MultipleBucketsInOrder(t *testing.T) {
	got := relevantData("projects, skills and how to contact", samplePortfolio(), domain.Persona{})
	pi := strings.Index(got, "PROJECTS:")
	si := strings.Index(got, "SKILLS:")
	ci := strings.Index(got, "CONTACT:")
	require.True(t, pi >= 0 && si > pi && ci > si, got)
}

func TestRelevantData_ContactMergesPersona(t *testing.T) {
	pe := domain.Persona{Email: "hello@ada.dev", GitHub: "https://github.com/ada"}
	got := relevantData("email", samplePortfolio(), pe)
	require.Contains(t, got, `"email": "hello@ada.dev"`)
	require.Contains(t, got, `"github": "https://github.com/ada"`)
	require.Contains(t, got, `"twitter": "@ada"`)
	require.NotContains(t, got, "ada@example.com")
}

func TestRelevantData_Background(t *testing.T) {
	got := relevantData("what is the educational background", samplePortfolio(), domain.Persona{})
	require.Contains(t, got, "BACKGROUND:")
	require.Contains(t, got, `"degree": "BSc"`)
	require.Contains(t, got, `"title": "Engineer"`)
}

func TestRelevantData_AchievementsLimited(t *testing.T) {
	got := relevantData("any hackathon achievements?", samplePortfolio(), domain.Persona{})
	require.Contains(t, got, "ACHIEVEMENTS:")
	require.Contains(t, got, `"H2"`)
	require.NotContains(t, got, `"H3"`)
	require.Contains(t, got, "https://leetcode.com/ada")
}

func TestRelevantData_Farewell(t *testing.T) {
	got := relevantData("goodbye", samplePortfolio(), domain.Persona{})
	require.Contains(t, got, "FAREWELL:")
	require.Contains(t, got, "brief and friendly")
}

func TestRelevantData_DefaultProfile(t *testing.T) {
	got := relevantData("what's the weather", samplePortfolio(), domain.Persona{})
	require.True(t, strings.HasPrefix(got, "PROFILE: "))
	require.Contains(t, got, `"bio": "`+strings.Repeat("b", 200)+`..."`)
}

func TestRelevantData_NothingMatchesWithoutProfile(t *testing.T) {
	got := relevantData("what's the weather", &domain.Portfolio{}, domain.Persona{})
	require.Equal(t, "Basic portfolio information available.", got)
}
