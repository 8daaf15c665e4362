package event

// TimeRange returns the first and last record timestamps of a body in file
// order. ok is false for bodies with no records.
func TimeRange(body Body) (first, last uint64, ok bool) {
	switch b := body.(type) {
	case *EventsBatch:
		switch {
		case len(b.Generic) > 0:
			return b.Generic[0].T, b.Generic[len(b.Generic)-1].T, true
		case len(b.Dvs) > 0:
			return b.Dvs[0].T, b.Dvs[len(b.Dvs)-1].T, true
		case len(b.Atis) > 0:
			return b.Atis[0].T, b.Atis[len(b.Atis)-1].T, true
		case len(b.Color) > 0:
			return b.Color[0].T, b.Color[len(b.Color)-1].T, true
		}
	case *FrameBody:
		return b.Frame.T, b.Frame.T, true
	case *ImuBatch:
		if len(b.Samples) > 0 {
			return b.Samples[0].T, b.Samples[len(b.Samples)-1].T, true
		}
	case *TriggerBatch:
		if len(b.Triggers) > 0 {
			return b.Triggers[0].T, b.Triggers[len(b.Triggers)-1].T, true
		}
	}
	return 0, 0, false
}
