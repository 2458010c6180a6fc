package db

// Artifact steps recorded during a run.
const (
	// StepBuildSpec is the validated build spec the run started from.
	StepBuildSpec = "build_spec"
	// StepUpdateRequest is the raw change request for update runs.
	StepUpdateRequest = "update_request"
	// StepVerification is the final verification report.
	StepVerification = "verification"
	// StepErrorLog prefixes the per-attempt combined error text.
	StepErrorLog = "error_log"
)

// Artifact categories recorded during a run.
const (
	// CategoryGeneration covers spec ingestion and component generation.
	CategoryGeneration = "generation"
	// CategoryVerification covers browser and toolchain checks.
	CategoryVerification = "verification"
	// CategoryRepair covers fix passes and escalations.
	CategoryRepair = "repair"
)
