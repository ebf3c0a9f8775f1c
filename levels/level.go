package levels

import (
	"fmt"
	"strconv"

	"github.com/milk9111/tilephysics/common"
	"github.com/milk9111/tilephysics/logger"
	"github.com/milk9111/tilephysics/mesh"
	"github.com/sirupsen/logrus"
)

// Passage bits: each set bit blocks movement in that direction.
const (
	BlockDown  = 1
	BlockLeft  = 2
	BlockRight = 4
	BlockUp    = 8
	Wall       = BlockDown | BlockLeft | BlockRight | BlockUp
)

// Level is one tile map and the entities placed on it.
type Level struct {
	Name     string   `json:"name"`
	W        int      `json:"width"`
	H        int      `json:"height"`
	Gravity  *string  `json:"gravity,omitempty"`
	Passage  []int    `json:"passage"`
	Entities []Entity `json:"entities,omitempty"`

	// Revision is bumped on every hot reload so a reloaded level never looks
	// like the world that is already built.
	Revision int `json:"-"`
}

// Entity places a prefab on the map, in tiles.
type Entity struct {
	Name   string  `json:"name"`
	Prefab string  `json:"prefab"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (l *Level) Width() int  { return l.W }
func (l *Level) Height() int { return l.H }

// ID identifies the level and its revision.
func (l *Level) ID() string {
	if l.Revision == 0 {
		return l.Name
	}
	return l.Name + "@" + strconv.Itoa(l.Revision)
}

// GravityOverride returns the level's gravity string, if it sets one.
func (l *Level) GravityOverride() (string, bool) {
	if l.Gravity == nil {
		return "", false
	}
	return *l.Gravity, true
}

// Passable reports whether the cell lets movement through in dir. Cells
// outside the map, or missing from the passage table, are open.
func (l *Level) Passable(x, y int, dir mesh.Direction) bool {
	if x < 0 || y < 0 || x >= l.W || y >= l.H {
		return true
	}
	i := y*l.W + x
	if i >= len(l.Passage) {
		return true
	}
	return l.Passage[i]&directionBit(dir) == 0
}

// Set overwrites the passage flags of one cell, growing the table if needed.
func (l *Level) Set(x, y, flags int) {
	if x < 0 || y < 0 || x >= l.W || y >= l.H {
		return
	}
	i := y*l.W + x
	for len(l.Passage) <= i {
		l.Passage = append(l.Passage, 0)
	}
	l.Passage[i] = flags
}

func directionBit(dir mesh.Direction) int {
	switch dir {
	case mesh.Down:
		return BlockDown
	case mesh.Left:
		return BlockLeft
	case mesh.Right:
		return BlockRight
	case mesh.Up:
		return BlockUp
	}
	return 0
}

// normalize clamps bad sizes and reports passage tables that don't match.
func (l *Level) normalize() {
	log := logger.For("levels").WithField("level", l.Name)
	if l.W < 0 || l.H < 0 {
		log.WithFields(logrus.Fields{"width": l.W, "height": l.H}).Warn("levels: negative size clamped to 0")
		l.W, l.H = max(l.W, 0), max(l.H, 0)
	}
	if want := l.W * l.H; len(l.Passage) != want {
		log.WithFields(logrus.Fields{"cells": len(l.Passage), "want": want}).Warn("levels: passage table size mismatch")
		if len(l.Passage) > want {
			l.Passage = l.Passage[:want]
		}
	}
	for i, flags := range l.Passage {
		if clamped := common.Clamp(flags, 0, Wall); clamped != flags {
			log.WithFields(logrus.Fields{"cell": i, "flags": flags}).Warn("levels: passage flags out of range")
			l.Passage[i] = clamped
		}
	}
}

func (l *Level) String() string {
	return fmt.Sprintf("%s (%dx%d)", l.ID(), l.W, l.H)
}
