package base

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Level is the severity of a log record
//
// The pipeline itself never filters by level; levels exist for rendering and for ERROR+ backup forwarding
type Level uint8

// Log levels in ascending severity
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// String returns the upper-case name used in the rendered line format
func (lv Level) String() string {
	if int(lv) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[lv]
}

// ParseLevel parses an upper-case level name
func ParseLevel(name string) (Level, error) {
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelDebug, fmt.Errorf("unknown log level '%s'", name)
}

// UnmarshalYAML unmarshals a level from its upper-case name
func (lv *Level) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, perr := ParseLevel(name)
	if perr != nil {
		return perr
	}
	*lv = parsed
	return nil
}

// MarshalYAML marshals a level to its upper-case name
func (lv Level) MarshalYAML() (interface{}, error) {
	return lv.String(), nil
}
