// Package rulebased answers questions about the portfolio without any
// network call: keyword intent detection, fixed templates, and sections
// rendered straight from the portfolio document.
package rulebased

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"portfolio-assistant/internal/domain"
)

// Level says which fallback level produced a reply.
type Level int

const (
	// LevelTemplate is the template plus, for data-backed intents, the
	// extracted portfolio section.
	LevelTemplate Level = iota
	// LevelStatic is the template plus the embedded static text.
	LevelStatic
	// LevelEmergency is the fixed apology with contact details.
	LevelEmergency
)

func (l Level) String() string {
	switch l {
	case LevelTemplate:
		return "template"
	case LevelStatic:
		return "static"
	case LevelEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// Reply is the outcome of Respond. Text is never empty.
type Reply struct {
	Text   string
	Intent Intent
	Level  Level
}

// Responder builds rule-based replies. It is safe for concurrent use; all
// state is read-only after New.
type Responder struct {
	data      *domain.Portfolio
	persona   domain.Persona
	templates map[Intent][]string
	extract   Extractor
	emergency string
	logger    *slog.Logger
}

type Option func(*Responder)

// WithTemplates replaces the template table.
func WithTemplates(t map[Intent][]string) Option {
	return func(r *Responder) { r.templates = t }
}

// WithExtractor replaces the section renderer.
func WithExtractor(e Extractor) Option {
	return func(r *Responder) { r.extract = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Responder) { r.logger = l }
}

// New returns a Responder over data, which may be nil. The persona is
// completed from data before use.
func New(data *domain.Portfolio, persona domain.Persona, opts ...Option) *Responder {
	pe := persona.Complete(data)
	r := &Responder{
		data:      data,
		persona:   pe,
		templates: defaultTemplates(pe),
		extract:   Extract,
		emergency: emergencyText(pe),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DataLoaded reports whether a portfolio document is available.
func (r *Responder) DataLoaded() bool { return r.data != nil }

// Persona returns the completed persona.
func (r *Responder) Persona() domain.Persona { return r.persona }

// Emergency returns the unconditional last-resort reply.
func (r *Responder) Emergency() string { return r.emergency }

// Template returns the opener used for intent.
func (r *Responder) Template(intent Intent) (string, error) {
	ts := r.templates[intent]
	if len(ts) == 0 || strings.TrimSpace(ts[0]) == "" {
		return "", fmt.Errorf("rulebased: no template for intent %q", intent)
	}
	return ts[0], nil
}

// Respond answers message. It never fails: when both the template level and
// the static level fail, the emergency text is returned with LevelEmergency.
func (r *Responder) Respond(message string) Reply {
	if strings.TrimSpace(message) == "" {
		return Reply{Text: welcome(r.persona), Intent: IntentGreeting, Level: LevelTemplate}
	}
	intent := Classify(message)

	text, idx, err := firstOf(
		func() (string, error) { return r.fromTemplate(intent) },
		func() (string, error) { return r.fromStatic(intent) },
	)
	if err != nil {
		r.logger.Error("rule-based reply failed, using emergency text", "intent", intent, "err", err)
		return Reply{Text: r.emergency, Intent: intent, Level: LevelEmergency}
	}
	return Reply{Text: text, Intent: intent, Level: Level(idx)}
}

func (r *Responder) fromTemplate(intent Intent) (string, error) {
	base, err := r.Template(intent)
	if err != nil {
		return "", err
	}
	switch {
	case intent == IntentDefault:
		return base + "\n\n" + suggestions(r.persona), nil
	case dataBacked(intent) && r.data != nil:
		section, err := r.extract(intent, r.data, r.persona)
		if err != nil {
			r.logger.Warn("portfolio section unavailable", "intent", intent, "err", err)
			return "", err
		}
		return base + "\n\n" + section, nil
	case dataBacked(intent):
		return "", fmt.Errorf("rulebased: %w", domain.ErrDataUnavailable)
	}
	return base, nil
}

func (r *Responder) fromStatic(intent Intent) (string, error) {
	base, err := r.Template(intent)
	if err != nil {
		return "", err
	}
	if static := staticFallback(intent, r.persona); static != "" {
		return base + "\n\n" + static, nil
	}
	return base, nil
}

type attempt func() (string, error)

var errPanicked = errors.New("rulebased: attempt panicked")

// firstOf runs attempts in order and returns the first successful result
// with its index. A panicking attempt counts as a failure.
func firstOf(attempts ...attempt) (string, int, error) {
	var errs []error
	for i, a := range attempts {
		text, err := run(a)
		if err == nil {
			return text, i, nil
		}
		errs = append(errs, err)
	}
	return "", -1, errors.Join(errs...)
}

func run(a attempt) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("%w: %v", errPanicked, rec)
		}
	}()
	return a()
}
