package regeneration

import (
	"fmt"

	"github.com/angelmondragon/storefronts/pkg/enums"
)

// transitions lists the legal next stages. Only Fetching may fail the run;
// later stages record their error and move on.
var transitions = map[enums.RegenerationStage][]enums.RegenerationStage{
	enums.StageFetching:            {enums.StageImagesSyncing, enums.StageFailed},
	enums.StageImagesSyncing:       {enums.StageCoreFieldsUpdating},
	enums.StageCoreFieldsUpdating:  {enums.StageTestimonialsSyncing},
	enums.StageTestimonialsSyncing: {enums.StageServicesSyncing},
	enums.StageServicesSyncing:     {enums.StageRevalidating},
	enums.StageRevalidating:        {enums.StageDone},
}

type machine struct {
	stage enums.RegenerationStage
	seen  []enums.RegenerationStage
}

func newMachine() *machine {
	return &machine{stage: enums.StageFetching, seen: []enums.RegenerationStage{enums.StageFetching}}
}

func (m *machine) advance(next enums.RegenerationStage) error {
	for _, allowed := range transitions[m.stage] {
		if allowed == next {
			m.stage = next
			m.seen = append(m.seen, next)
			return nil
		}
	}
	return fmt.Errorf("illegal regeneration transition %s -> %s", m.stage, next)
}
