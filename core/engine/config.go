package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Backend names accepted in Config.Engine.
const (
	BackendCanvas  = "canvas"
	BackendStarTeX = "startex"
	BackendNone    = "none"
)

// Macro is a user macro. Name has no leading backslash and Args is the
// number of #n parameters the body may use.
type Macro struct {
	Name string `json:"name"`
	Args int    `json:"args"`
	Body string `json:"body"`
}

// Def renders the macro as a plain TeX definition.
func (m Macro) Def() string {
	var b strings.Builder
	b.WriteString(`\def\`)
	b.WriteString(m.Name)
	for i := 1; i <= m.Args; i++ {
		fmt.Fprintf(&b, "#%d", i)
	}
	b.WriteString("{")
	b.WriteString(m.Body)
	b.WriteString("}")
	return b.String()
}

// Config is handed to the backend that opens the engine. Controllers never
// look inside it.
type Config struct {
	Engine   string   `json:"engine"`
	Macros   []Macro  `json:"macros,omitempty"`
	Packages []string `json:"packages,omitempty"`
}

// DefaultConfig returns the canvas backend with the AMS packages enabled
// and no macros.
func DefaultConfig() Config {
	return Config{
		Engine:   BackendCanvas,
		Packages: []string{"base", "ams", "newcommand", "noundefined"},
	}
}

// Preamble joins every macro definition, one per line.
func (c Config) Preamble() string {
	if len(c.Macros) == 0 {
		return ""
	}
	defs := make([]string, len(c.Macros))
	for i, m := range c.Macros {
		defs[i] = m.Def()
	}
	return strings.Join(defs, "\n") + "\n"
}

// LoadConfig reads a JSON config file. Fields missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading engine config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing engine config %s: %w", path, err)
	}
	switch cfg.Engine {
	case BackendCanvas, BackendStarTeX, BackendNone:
	default:
		return cfg, fmt.Errorf("engine config %s: unknown engine %q", path, cfg.Engine)
	}
	return cfg, nil
}
