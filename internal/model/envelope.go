package model

// PropertyStatus classifies the reliability of an envelope's value.
type PropertyStatus string

const (
	StatusOK           PropertyStatus = "ok"
	StatusInfo         PropertyStatus = "info"
	StatusWarning      PropertyStatus = "warning"
	StatusError        PropertyStatus = "error"
	StatusNotDefined   PropertyStatus = "not_defined"
	StatusNotAvailable PropertyStatus = "not_available"
)

// statusRank orders statuses by severity for escalation. Higher is worse.
func statusRank(s PropertyStatus) int {
	switch s {
	case StatusOK:
		return 0
	case StatusInfo:
		return 1
	case StatusNotDefined, StatusNotAvailable:
		return 2
	case StatusWarning:
		return 3
	case StatusError:
		return 4
	default:
		return 2
	}
}

// Issue is one diagnostic accumulated on an envelope. Issues never abort
// processing; they feed the processing-errors view.
type Issue struct {
	Status   PropertyStatus `json:"status"`
	Message  string         `json:"message"`
	Property string         `json:"property,omitempty"`
	Data     any            `json:"data,omitempty"`
}

// Derived holds auxiliary content attached to an envelope. It is additive
// only and never replaces the envelope's value.
type Derived struct {
	Summary string `json:"summary,omitempty"`
}

// Envelope wraps one descriptive property value with its provenance. Every
// feature property is stored as exactly one Envelope, never a bare value.
type Envelope struct {
	Value      any            `json:"value"`
	SourceName string         `json:"source_name,omitempty"`
	SourceURL  string         `json:"source_url,omitempty"`
	Comments   string         `json:"comments,omitempty"`
	Status     PropertyStatus `json:"status"`
	Issues     []Issue        `json:"issues,omitempty"`
	Derived    *Derived       `json:"derived,omitempty"`
}

// NewEnvelope returns an empty envelope with no value.
func NewEnvelope() *Envelope {
	return &Envelope{Status: StatusNotDefined}
}

// IsNull reports whether the envelope carries no value.
func (e *Envelope) IsNull() bool {
	if e.Value == nil {
		return true
	}
	if s, ok := e.Value.(string); ok {
		return s == ""
	}
	return false
}

// StringValue returns the value as a string, or "" when the value is absent
// or not a string.
func (e *Envelope) StringValue() string {
	s, _ := e.Value.(string)
	return s
}

// AddIssue appends a diagnostic and escalates the envelope status when the
// issue is more severe than the current status.
func (e *Envelope) AddIssue(issue Issue) {
	e.Issues = append(e.Issues, issue)
	if statusRank(issue.Status) > statusRank(e.Status) {
		e.Status = issue.Status
	}
}

// SetValue fills the envelope from a source, leaving issues and derived
// content untouched.
func (e *Envelope) SetValue(value any, sourceName, sourceURL string) {
	e.Value = value
	e.SourceName = sourceName
	e.SourceURL = sourceURL
	e.Status = StatusOK
}
