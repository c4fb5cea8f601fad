package rag

import (
	"fmt"

	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*Mode)(nil)
	_ pflag.Value = (*Format)(nil)
)

// Mode selects how far the pipeline runs.
type Mode int

const (
	GenerateResponse Mode = iota
	ExtractOnly
	SearchOnly
)

var modeNames = map[Mode]string{
	ExtractOnly:      "extract-only",
	SearchOnly:       "search-only",
	GenerateResponse: "generate-response",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Set implements pflag.Value.
func (m *Mode) Set(s string) error {
	for mode, name := range modeNames {
		if name == s {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("invalid mode %q: want one of extract-only|search-only|generate-response", s)
}

// Type implements pflag.Value.
func (m *Mode) Type() string { return "mode" }

// Format selects how results are written.
type Format int

const (
	Text Format = iota
	JSON
)

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case JSON:
		return "json"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Set implements pflag.Value.
func (f *Format) Set(s string) error {
	switch s {
	case "text":
		*f = Text
	case "json":
		*f = JSON
	default:
		return fmt.Errorf("invalid format %q: want text|json", s)
	}
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string { return "format" }
