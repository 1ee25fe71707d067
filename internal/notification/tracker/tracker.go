// Package tracker turns workflow events into vendor notifications using a
// YAML template table.
package tracker

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"vendorhub/internal/notification/metrics"
	"vendorhub/internal/notification/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/events"
	"vendorhub/pkg/requestcontext"
)

//go:generate mockgen -source=tracker.go -destination=mocks/tracker-mocks.go -package=mocks

//go:embed templates.yaml
var DefaultTemplates []byte

// Notifier records a notification produced from an event.
type Notifier interface {
	Record(ctx context.Context, vendorID id.VendorID, draft models.Draft) (*models.Notification, error)
}

// Template is one entry of the template table.
type Template struct {
	Type     string          `yaml:"type"`
	Title    string          `yaml:"title"`
	Message  string          `yaml:"message"`
	Priority string          `yaml:"priority"`
	Action   *ActionTemplate `yaml:"action"`
}

type ActionTemplate struct {
	URL      string        `yaml:"url"`
	Deadline time.Duration `yaml:"deadline"`
}

type rule struct {
	typ      string
	priority models.Priority
	title    *template.Template
	message  *template.Template
	url      *template.Template
	deadline time.Duration
	action   bool
}

// Tracker is an events.Sink. Events without a template are ignored.
type Tracker struct {
	notifier Notifier
	rules    map[events.Type]rule
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Tracker)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) {
		t.metrics = m
	}
}

// New builds a tracker from a YAML template table; pass DefaultTemplates for
// the built-in one.
func New(notifier Notifier, templates []byte, opts ...Option) (*Tracker, error) {
	rules, err := parse(templates)
	if err != nil {
		return nil, err
	}
	t := &Tracker{
		notifier: notifier,
		rules:    rules,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

func parse(data []byte) (map[events.Type]rule, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("tracker: template table is empty")
	}
	var table map[string]Template
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("tracker: decode templates: %w", err)
	}

	rules := make(map[events.Type]rule, len(table))
	for key, tpl := range table {
		r := rule{typ: strings.TrimSpace(tpl.Type)}
		if r.typ == "" {
			return nil, fmt.Errorf("tracker: %s: type is required", key)
		}
		priority := tpl.Priority
		if priority == "" {
			priority = string(models.PriorityNormal)
		}
		p, err := models.ParsePriority(priority)
		if err != nil {
			return nil, fmt.Errorf("tracker: %s: %w", key, err)
		}
		r.priority = p
		if r.title, err = compile(key+".title", tpl.Title); err != nil {
			return nil, err
		}
		if r.message, err = compile(key+".message", tpl.Message); err != nil {
			return nil, err
		}
		if tpl.Action != nil {
			r.action = true
			r.deadline = tpl.Action.Deadline
			if r.url, err = compile(key+".action.url", tpl.Action.URL); err != nil {
				return nil, err
			}
		}
		rules[events.Type(key)] = r
	}
	return rules, nil
}

func compile(name, text string) (*template.Template, error) {
	tpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("tracker: parse %s: %w", name, err)
	}
	return tpl, nil
}

// Emit records a notification for events that have a template.
func (t *Tracker) Emit(ctx context.Context, ev events.Event) error {
	r, ok := t.rules[ev.Type]
	if !ok {
		t.metrics.IncTrackerSkipped("unmapped")
		return nil
	}
	if ev.VendorID.IsNil() {
		t.metrics.IncTrackerSkipped("no_vendor")
		return nil
	}

	draft, err := r.render(ev)
	if err != nil {
		t.metrics.IncTrackerSkipped("render")
		return err
	}
	if r.action && r.deadline > 0 {
		at := ev.OccurredAt
		if at.IsZero() {
			at = requestcontext.Now(ctx)
		}
		deadline := at.Add(r.deadline)
		draft.ActionDeadline = &deadline
	}

	n, err := t.notifier.Record(ctx, ev.VendorID, draft)
	if err != nil {
		return fmt.Errorf("tracker: record %s: %w", ev.Type, err)
	}
	t.logger.DebugContext(ctx, "notification recorded from event",
		"event_type", string(ev.Type),
		"notification_id", n.ID.String(),
	)
	return nil
}

func (r rule) render(ev events.Event) (models.Draft, error) {
	draft := models.Draft{
		Type:           r.typ,
		Priority:       r.priority,
		ActionRequired: r.action,
	}
	if ev.EntityKind != "" && ev.EntityID != "" {
		draft.Related = models.Related{Kind: ev.EntityKind, ID: ev.EntityID}
	}
	var err error
	if draft.Title, err = execute(r.title, ev); err != nil {
		return draft, err
	}
	if draft.Message, err = execute(r.message, ev); err != nil {
		return draft, err
	}
	if r.url != nil {
		if draft.ActionURL, err = execute(r.url, ev); err != nil {
			return draft, err
		}
	}
	return draft, nil
}

func execute(tpl *template.Template, ev events.Event) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, ev); err != nil {
		return "", fmt.Errorf("tracker: render %s: %w", tpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
