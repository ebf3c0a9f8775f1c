package component

// Spawned marks an entity placed by a level, with the prefab it came from.
type Spawned struct {
	Name   string
	Prefab string
}

var SpawnedComponent = NewComponent[Spawned]()
