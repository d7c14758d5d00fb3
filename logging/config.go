package logging

// Config is the `logging` extension section of modforge.yml. Environment
// variables (MODFORGE_LOG_LEVEL, MODFORGE_LOG_CALLER, MODFORGE_DEBUG)
// override the corresponding settings at startup.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn or error.
	Level string `yaml:"level"`

	// ReportCaller adds the source file and line to every entry.
	ReportCaller bool `yaml:"report_caller"`

	File   FileSinkConfig `yaml:"file"`
	Format FormatConfig   `yaml:"format"`
}

// FileSinkConfig points the file sink somewhere other than the default
// .modforge/logs/<component>-<date>.log.
type FileSinkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// FormatConfig controls how entries are rendered.
type FormatConfig struct {
	// Preset selects the formatter: "default", "simple" (no timestamp or
	// component tag) or "json".
	Preset string `yaml:"preset"`

	DisableTimestamp bool `yaml:"disable_timestamp"`
	DisableComponent bool `yaml:"disable_component"`

	// StructuredToStderr is "auto", "always" or "never". In auto mode
	// entries reach stderr only when debugging or when stderr is not an
	// interactive terminal.
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
