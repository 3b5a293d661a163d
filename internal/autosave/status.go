package autosave

// Status is the save indicator of one orchestrator.
type Status string

const (
	Idle   Status = "idle"
	Saving Status = "saving"
	Saved  Status = "saved"
)

// Combine folds several statuses into one document-wide indicator: saving if
// any is saving, else saved if any is saved, else idle.
func Combine(statuses ...Status) Status {
	combined := Idle
	for _, s := range statuses {
		switch s {
		case Saving:
			return Saving
		case Saved:
			combined = Saved
		}
	}
	return combined
}
