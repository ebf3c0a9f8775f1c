package component

import "github.com/milk9111/tilephysics/levels"

// Level sits on the single level entity and points at the loaded map.
type Level struct {
	Name string
	Data *levels.Level
}

var LevelComponent = NewComponent[Level]()
