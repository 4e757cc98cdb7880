package writer

import (
	"github.com/rxtech-lab/argo-quant/internal/types"
)

// BarWriter persists downloaded bars to a destination.
type BarWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single bar.
	Write(bar types.Bar) error
	// Finalize completes the writing process and returns the output path.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer. Safe to call more than once.
	Close() error
	// OutputPath returns the configured output file path.
	OutputPath() string
}
