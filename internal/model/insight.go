package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownLevel is returned when an impact or priority string is not recognized.
var ErrUnknownLevel = errors.New("unknown level")

// Impact describes how much an insight matters. The zero value is invalid.
type Impact int

// Impact levels.
const (
	ImpactHigh Impact = iota + 1
	ImpactMedium
	ImpactLow
	ImpactPositive
)

var impactNames = map[Impact]string{
	ImpactHigh:     "high",
	ImpactMedium:   "medium",
	ImpactLow:      "low",
	ImpactPositive: "positive",
}

// String returns the lowercase name of the impact.
func (i Impact) String() string {
	if name, ok := impactNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Impact(%d)", int(i))
}

// Valid reports whether i is one of the declared impacts.
func (i Impact) Valid() bool {
	_, ok := impactNames[i]
	return ok
}

// ParseImpact converts a name back into an Impact.
func ParseImpact(s string) (Impact, error) {
	for impact, name := range impactNames {
		if name == s {
			return impact, nil
		}
	}
	return 0, fmt.Errorf("%w: impact %q", ErrUnknownLevel, s)
}

// MarshalJSON encodes the impact as its name.
func (i Impact) MarshalJSON() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("%w: impact %d", ErrUnknownLevel, int(i))
	}
	return json.Marshal(i.String())
}

// UnmarshalJSON decodes an impact name.
func (i *Impact) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseImpact(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Priority orders actionable insights. The zero value means no priority.
type Priority int

// Priority levels.
const (
	PriorityNone Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

var priorityNames = map[Priority]string{
	PriorityHigh:   "high",
	PriorityMedium: "medium",
	PriorityLow:    "low",
}

// String returns the lowercase name of the priority, or "" for none.
func (p Priority) String() string {
	return priorityNames[p]
}

// ParsePriority converts a name back into a Priority. Empty means none.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNone, nil
	}
	for priority, name := range priorityNames {
		if name == s {
			return priority, nil
		}
	}
	return PriorityNone, fmt.Errorf("%w: priority %q", ErrUnknownLevel, s)
}

// MarshalJSON encodes the priority as its name.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a priority name.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// InsightCategory groups insights for display. It is unrelated to
// transaction categories.
type InsightCategory string

// Insight categories.
const (
	InsightAnomaly       InsightCategory = "anomaly"
	InsightForecast      InsightCategory = "forecast"
	InsightSeasonal      InsightCategory = "seasonal"
	InsightBehavior      InsightCategory = "behavior"
	InsightGoal          InsightCategory = "goal"
	InsightTrend         InsightCategory = "trend"
	InsightSubscriptions InsightCategory = "subscriptions"
	InsightActivity      InsightCategory = "activity"
	InsightNoData        InsightCategory = "no_data"
)

// Insight is a derived, human-readable observation about spending.
type Insight struct {
	EstimatedAnnualSavings *float64        `json:"estimated_annual_savings,omitempty"`
	ID                     string          `json:"id"`
	Category               InsightCategory `json:"category"`
	Message                string          `json:"message"`
	Recommendation         string          `json:"recommendation,omitempty"`
	Impact                 Impact          `json:"impact"`
	Priority               Priority        `json:"priority,omitempty"`
	Actionable             bool            `json:"actionable"`
}

// Savings returns the estimated annual savings or zero.
func (i Insight) Savings() float64 {
	if i.EstimatedAnnualSavings == nil {
		return 0
	}
	return *i.EstimatedAnnualSavings
}
