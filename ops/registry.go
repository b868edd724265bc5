package ops

import "github.com/tensorlace/graphrun/registry"

// RegisterAll wires every operator this package implements into reg,
// mirroring original_source/src/ops/array/mod.rs's register_all_ops and
// the teacher's own layers/registry/registry.go RegisterAll pattern.
func RegisterAll(reg *registry.Registry) {
	reg.Register("Placeholder", buildPlaceholder)
	reg.Register("Const", buildConst)
	reg.Register("Identity", buildIdentity)
	reg.Register("Reshape", buildReshape)
	reg.Register("ExpandDims", buildExpandDims)
	reg.Register("Squeeze", buildSqueeze)
	reg.Register("Shape", buildShape)
	reg.Register("ConcatV2", buildConcatV2)
	reg.Register("Pack", buildPack)
	reg.Register("StridedSlice", buildStridedSlice)
	reg.Register("MaxPool", buildMaxPool)
	reg.Register("AvgPool", buildAvgPool)
	reg.Register("Add", buildAdd)
	reg.Register("Sub", buildSub)
	reg.Register("Mul", buildMul)
	reg.Register("Div", buildDiv)
	reg.Register("Cast", buildCast)
}
