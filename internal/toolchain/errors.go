package toolchain

import "fmt"

// ConfigurationError reports a malformed or incomplete manifest. It is fatal
// and surfaced before any provisioning attempt.
type ConfigurationError struct {
	Platform string
	Tool     string
	Field    string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Platform == "" && e.Tool == "":
		return fmt.Sprintf("manifest: missing %s", e.Field)
	case e.Tool == "":
		return fmt.Sprintf("manifest: platform %s: missing %s", e.Platform, e.Field)
	default:
		return fmt.Sprintf("manifest: platform %s tool %s: missing %s", e.Platform, e.Tool, e.Field)
	}
}

// IntegrityError reports a checksum mismatch on a downloaded archive. The
// affected tool's provisioning is aborted; nothing from the archive is
// trusted.
type IntegrityError struct {
	Tool     string
	URL      string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("archive checksum mismatch for %s (%s): expected %s, got %s",
		e.Tool, e.URL, e.Expected, e.Actual)
}

// ExtractionError reports a declared file key that could not be located in
// the downloaded archive, which signals a manifest/archive mismatch.
type ExtractionError struct {
	Tool    string
	FileKey string
	Archive string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("archive for %s does not contain declared file %q (%s)",
		e.Tool, e.FileKey, e.Archive)
}
