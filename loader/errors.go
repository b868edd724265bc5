package loader

import "errors"

// ErrInvalidModel is returned for a zmf.Model whose graph cannot be
// turned into a valid Graph: a parameter tensor with an unsupported
// dtype or malformed data, an attribute of an unsupported kind or dtype
// name, or a graph that fails structural validation (for example a node
// naming a producer that does not exist).
var ErrInvalidModel = errors.New("loader: invalid model")
