package report

import "encoding/json"

// Severity is the ordinal health classification of a component or of
// the machine as a whole.
type Severity int

const (
	Good Severity = iota
	Warning
	Critical
)

func (s Severity) String() string {
	switch s {
	case Critical:
		return "Critical"
	case Warning:
		return "Warning"
	default:
		return "Good"
	}
}

// Worse returns the more severe of the two classifications.
func (s Severity) Worse(other Severity) Severity {
	if other > s {
		return other
	}

	return s
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}

	*s = ParseSeverity(name)

	return nil
}

// ParseSeverity maps a status string back to a Severity. Unknown
// strings degrade to Good, matching the interpreter's treatment of
// malformed input.
func ParseSeverity(name string) Severity {
	switch name {
	case "Critical":
		return Critical
	case "Warning":
		return Warning
	default:
		return Good
	}
}
