package component

// LevelChangeRequest is a one-shot request, on any entity, asking the level
// system to load TargetLevel. Entities spawned by the previous level are
// destroyed; everything else survives without its body.
//
// KeepEntities loads the level geometry without touching entities; restoring
// a save uses it after recreating the entities itself.
type LevelChangeRequest struct {
	TargetLevel  string
	KeepEntities bool
}

var LevelChangeRequestComponent = NewComponent[LevelChangeRequest]()
