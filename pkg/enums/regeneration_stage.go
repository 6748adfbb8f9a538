package enums

// RegenerationStage names a step of a storefront regeneration run.
type RegenerationStage string

const (
	StageFetching            RegenerationStage = "fetching"
	StageImagesSyncing       RegenerationStage = "images_syncing"
	StageCoreFieldsUpdating  RegenerationStage = "core_fields_updating"
	StageTestimonialsSyncing RegenerationStage = "testimonials_syncing"
	StageServicesSyncing     RegenerationStage = "services_syncing"
	StageRevalidating        RegenerationStage = "revalidating"
	StageDone                RegenerationStage = "done"
	StageFailed              RegenerationStage = "failed"
)

// RegenerationStages lists the stages in execution order, excluding the
// terminal states.
var RegenerationStages = []RegenerationStage{
	StageFetching,
	StageImagesSyncing,
	StageCoreFieldsUpdating,
	StageTestimonialsSyncing,
	StageServicesSyncing,
	StageRevalidating,
}

func (s RegenerationStage) String() string {
	return string(s)
}

// IsTerminal reports whether the run ends in this stage.
func (s RegenerationStage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}
