package scoringservice

import (
	eventservice "github.com/Black-And-White-Club/stage-console/app/modules/event/application"
	roundservice "github.com/Black-And-White-Club/stage-console/app/modules/round/application"
	undoservice "github.com/Black-And-White-Club/stage-console/app/modules/undo/application"
)

var (
	_ roundservice.Backend = (*ScoringService)(nil)
	_ eventservice.Backend = (*ScoringService)(nil)
	_ undoservice.Backend  = (*ScoringService)(nil)
)
