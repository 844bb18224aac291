package shaders

import (
	_ "embed"
)

//go:embed blit.wgsl
var BlitWGSL string

//go:embed accumulation.wgsl
var AccumulationWGSL string

//go:embed reprojection.wgsl
var ReprojectionWGSL string

//go:embed scene.wgsl
var SceneWGSL string
