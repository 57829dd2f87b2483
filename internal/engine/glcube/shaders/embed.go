// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// SkyboxVertexShader is the vertex shader for environment map display.
//
//go:embed skybox.vert
var SkyboxVertexShader string

// SkyboxFragmentShader is the fragment shader for environment map display.
//
//go:embed skybox.frag
var SkyboxFragmentShader string
