package save

import "errors"

var ErrNoLevel = errors.New("save: state names no level")
