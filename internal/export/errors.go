package export

import "errors"

var (
	// ErrUnsupportedEnvironment means no browser is available to rasterise
	// the page. Export fails fast instead of producing an empty file.
	ErrUnsupportedEnvironment = errors.New("export: unsupported environment, no renderable surface available")
	// ErrExportInProgress rejects a second export in the same session.
	ErrExportInProgress = errors.New("export: another export is already running for this session")
	ErrInvalidOptions   = errors.New("export: invalid options")
	ErrInvalidOutput    = errors.New("export: renderer produced invalid PDF output")
)
