// Package voice parses spoken commands into intents, entities and actions.
// Matching is keyword based and has no external dependencies.
package voice

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"
)

// ErrEmptyCommand is returned for blank input.
var ErrEmptyCommand = errors.New("voice command is required")

// Priorities attached to intents and actions.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// IntentUnknown is reported when no keyword matches.
const IntentUnknown = "unknown"

// Action types produced by the parser.
const (
	ActionSendAlert        = "send_alert"
	ActionGetSensorData    = "get_sensor_data"
	ActionGetLocation      = "get_location"
	ActionConnectDevice    = "connect_device"
	ActionDisconnectDevice = "disconnect_device"
	ActionShowMedications  = "show_medications"
	ActionNavigateTo       = "navigate_to"
	ActionImmediateAlert   = "immediate_alert"
)

// Pattern is one entry of the command table.
type Pattern struct {
	Name        string
	Intent      string
	Keywords    []string
	Priority    string
	Actions     []string
	Description string
}

// patterns is matched in order; earlier entries win ties.
var patterns = []Pattern{
	{
		Name:        "emergency",
		Intent:      "emergency",
		Keywords:    []string{"emergency", "help", "urgent", "alert", "sos", "danger", "crisis"},
		Priority:    PriorityHigh,
		Actions:     []string{ActionSendAlert, "call_emergency", "notify_contacts"},
		Description: "Trigger emergency alerts and contact emergency services",
	},
	{
		Name:        "health",
		Intent:      "health_status",
		Keywords:    []string{"health", "vitals", "status", "condition", "symptoms", "pain", "sick"},
		Priority:    PriorityMedium,
		Actions:     []string{"show_health_data", "check_vitals", "health_report"},
		Description: "Check health status, vitals, and medical information",
	},
	{
		Name:        "location",
		Intent:      "location",
		Keywords:    []string{"location", "where", "position", "address", "coordinates"},
		Priority:    PriorityMedium,
		Actions:     []string{ActionGetLocation, "share_location", "find_nearby"},
		Description: "Get current location and share position",
	},
	{
		Name:        "device",
		Intent:      "device_control",
		Keywords:    []string{"device", "bluetooth", "connect", "disconnect", "pair", "sensor"},
		Priority:    PriorityLow,
		Actions:     []string{ActionConnectDevice, ActionDisconnectDevice, "scan_devices"},
		Description: "Control Bluetooth devices and sensors",
	},
	{
		Name:        "medication",
		Intent:      "medication",
		Keywords:    []string{"medication", "medicine", "pills", "drugs", "prescription", "dose"},
		Priority:    PriorityMedium,
		Actions:     []string{ActionShowMedications, "medication_reminder", "add_medication"},
		Description: "Manage medications and reminders",
	},
	{
		Name:        "navigation",
		Intent:      "navigation",
		Keywords:    []string{"go", "navigate", "open", "show", "display", "switch"},
		Priority:    PriorityLow,
		Actions:     []string{ActionNavigateTo, "open_screen", "change_view"},
		Description: "Navigate between app screens and features",
	},
}

// emergencyWords force the emergency intent regardless of score.
var emergencyWords = []string{"emergency", "help", "urgent", "sos", "danger", "crisis"}

var urgencyWords = []string{"urgent", "asap", "immediately", "now", "quickly"}

var contactPatterns = []struct {
	verb string
	re   *regexp.Regexp
}{
	{"call", regexp.MustCompile(`call\s+(\w+)`)},
	{"text", regexp.MustCompile(`text\s+(\w+)`)},
	{"email", regexp.MustCompile(`email\s+(\w+)`)},
	{"contact", regexp.MustCompile(`contact\s+(\w+)`)},
}

var (
	numberPattern = regexp.MustCompile(`\b\d{3,}\b`)
	timePatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*(minute|min|hour|hr)s?`),
		regexp.MustCompile(`(morning|afternoon|evening|night)`),
		regexp.MustCompile(`(today|tomorrow|yesterday)`),
	}
)

// ContactEntity is a person named after a contact verb.
type ContactEntity struct {
	Name   string `json:"name"`
	Action string `json:"action"`
}

// NumberEntity is a run of three or more digits.
type NumberEntity struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Entities are the values extracted from a command.
type Entities struct {
	Contacts    []ContactEntity `json:"contacts"`
	Numbers     []NumberEntity  `json:"numbers"`
	Locations   []string        `json:"locations"`
	Medications []string        `json:"medications"`
	Time        *string         `json:"time"`
	Urgency     string          `json:"urgency"`
}

// Action is one step the server or client should take.
type Action struct {
	Type                 string     `json:"type"`
	Target               string     `json:"target,omitempty"`
	Priority             string     `json:"priority,omitempty"`
	IncludeLocation      bool       `json:"include_location,omitempty"`
	IncludeMedicalInfo   bool       `json:"include_medical_info,omitempty"`
	IncludeVitals        bool       `json:"include_vitals,omitempty"`
	IncludeEnvironmental bool       `json:"include_environmental,omitempty"`
	Timestamp            *time.Time `json:"timestamp,omitempty"`
}

// Result is a parsed command.
type Result struct {
	Success           bool           `json:"success"`
	OriginalCommand   string         `json:"originalCommand"`
	NormalizedCommand string         `json:"normalizedCommand"`
	Intent            string         `json:"intent"`
	IntentLabel       string         `json:"intentLabel"`
	Confidence        float64        `json:"confidence"`
	Entities          Entities       `json:"entities"`
	Actions           []Action       `json:"actions"`
	Priority          string         `json:"priority"`
	Emergency         bool           `json:"emergency,omitempty"`
	Timestamp         time.Time      `json:"timestamp"`
	Context           map[string]any `json:"context"`
}

// Command describes one pattern for the help catalogue.
type Command struct {
	Intent      string   `json:"intent"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Actions     []string `json:"actions"`
}

// Parser turns command text into a Result.
type Parser struct {
	now func() time.Time
}

// NewParser returns a parser using the built-in command table.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

type intentMatch struct {
	name     string
	label    string
	score    float64
	priority string
}

// Process parses command. context is echoed back on the result.
func (p *Parser) Process(command string, context map[string]any) (*Result, error) {
	normalized := strings.ToLower(strings.TrimSpace(command))
	if normalized == "" {
		return nil, ErrEmptyCommand
	}
	if context == nil {
		context = map[string]any{}
	}

	match := matchIntent(normalized)
	entities := extractEntities(normalized)
	actions := buildActions(match.name, entities)

	return &Result{
		Success:           true,
		OriginalCommand:   command,
		NormalizedCommand: normalized,
		Intent:            match.name,
		IntentLabel:       match.label,
		Confidence:        confidence(match.score, entities, actions),
		Entities:          entities,
		Actions:           actions,
		Priority:          match.priority,
		Timestamp:         p.now().UTC(),
		Context:           context,
	}, nil
}

// ProcessEmergency parses command and escalates it to a critical alert.
func (p *Parser) ProcessEmergency(command string, context map[string]any) (*Result, error) {
	res, err := p.Process(command, context)
	if err != nil {
		return nil, err
	}
	ts := res.Timestamp
	res.Priority = PriorityHigh
	res.Emergency = true
	res.Actions = append([]Action{{Type: ActionImmediateAlert, Priority: PriorityCritical, Timestamp: &ts}}, res.Actions...)
	return res, nil
}

// Commands lists the command table for help screens.
func (p *Parser) Commands() []Command {
	out := make([]Command, 0, len(patterns))
	for _, pat := range patterns {
		out = append(out, Command{
			Intent:      pat.Name,
			Keywords:    append([]string(nil), pat.Keywords...),
			Description: pat.Description,
			Priority:    pat.Priority,
			Actions:     append([]string(nil), pat.Actions...),
		})
	}
	return out
}

// Describe returns the help text for a pattern name.
func Describe(name string) string {
	if pat, ok := lookup(name); ok {
		return pat.Description
	}
	return "Unknown command type"
}

func matchIntent(text string) intentMatch {
	if containsAny(text, emergencyWords) {
		return intentMatch{name: "emergency", label: "emergency", score: 1.0, priority: PriorityHigh}
	}

	best := intentMatch{name: IntentUnknown, label: IntentUnknown, priority: PriorityLow}
	for _, pat := range patterns {
		matched := 0
		for _, kw := range pat.Keywords {
			if strings.Contains(text, kw) {
				matched++
			}
		}
		score := float64(matched) / float64(len(pat.Keywords))
		if score > best.score {
			best = intentMatch{name: pat.Name, label: pat.Intent, score: score, priority: pat.Priority}
		}
	}
	return best
}

func extractEntities(text string) Entities {
	e := Entities{
		Contacts:    []ContactEntity{},
		Numbers:     []NumberEntity{},
		Locations:   []string{},
		Medications: []string{},
		Urgency:     "normal",
	}

	for _, cp := range contactPatterns {
		if m := cp.re.FindStringSubmatch(text); m != nil {
			e.Contacts = append(e.Contacts, ContactEntity{Name: m[1], Action: cp.verb})
		}
	}

	for _, n := range numberPattern.FindAllString(text, -1) {
		kind := "quantity"
		if len(n) >= 10 {
			kind = "phone"
		}
		e.Numbers = append(e.Numbers, NumberEntity{Value: n, Type: kind})
	}

	if containsAny(text, urgencyWords) {
		e.Urgency = "high"
	}

	// Later patterns override earlier ones.
	for _, re := range timePatterns {
		if m := re.FindString(text); m != "" {
			t := m
			e.Time = &t
		}
	}

	return e
}

func buildActions(intent string, e Entities) []Action {
	pat, ok := lookup(intent)
	if !ok {
		return []Action{}
	}

	actions := make([]Action, 0, len(pat.Actions)+len(e.Contacts)+1)
	for _, a := range pat.Actions {
		actions = append(actions, Action{Type: a})
	}
	for _, c := range e.Contacts {
		actions = append(actions, Action{Type: c.Action, Target: c.Name, Priority: e.Urgency})
	}

	switch pat.Name {
	case "emergency":
		actions = append(actions, Action{
			Type:               ActionSendAlert,
			Priority:           PriorityHigh,
			IncludeLocation:    true,
			IncludeMedicalInfo: true,
		})
	case "health":
		actions = append(actions, Action{
			Type:                 ActionGetSensorData,
			IncludeVitals:        true,
			IncludeEnvironmental: true,
		})
	}
	return actions
}

func confidence(score float64, e Entities, actions []Action) float64 {
	if len(e.Contacts) > 0 || len(e.Numbers) > 0 {
		score += 0.2
	}
	if len(actions) > 1 {
		score += 0.1
	}
	return math.Min(score, 1.0)
}

func lookup(name string) (Pattern, bool) {
	for _, pat := range patterns {
		if pat.Name == name {
			return pat, true
		}
	}
	return Pattern{}, false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
