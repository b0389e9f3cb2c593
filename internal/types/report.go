package types

type (
	// FileError records a per-file failure.
	FileError struct {
		File    string `json:"file"`
		Message string `json:"error"`
	}

	// MigrationReport accumulates the outcome of a batch run.
	MigrationReport struct {
		Found        int         `json:"found"`
		Processed    int         `json:"processed"`
		Skipped      int         `json:"skipped"`
		Errors       []FileError `json:"errors,omitempty"`
		ImagesFound  int         `json:"imagesFound"`
		ImagesCopied int         `json:"imagesCopied"`
		DryRun       bool        `json:"dryRun,omitempty"`
	}
)
