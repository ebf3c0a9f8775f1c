package component

// ReloadRequest asks the level system to reload the current level from disk,
// usually because a watched file changed.
type ReloadRequest struct{}

var ReloadRequestComponent = NewComponent[ReloadRequest]()
