package services

// State is the controller's connection mode.
type State int

const (
	StateLoading State = iota
	StateCloudSynced
	StateLocalMode
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateCloudSynced:
		return "cloud"
	case StateLocalMode:
		return "local"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
