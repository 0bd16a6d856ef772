// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/devblok/gsvk/device"
)

// TextureType tells what a texture is used for
type TextureType int

// Texture types
const (
	TextureRenderTarget TextureType = iota + 1
	TextureDepthStencil
	TextureShaderResource
	TextureOffscreen
	TextureBackbuffer
)

func (t TextureType) String() string {
	switch t {
	case TextureRenderTarget:
		return "render target"
	case TextureDepthStencil:
		return "depth stencil"
	case TextureShaderResource:
		return "texture"
	case TextureOffscreen:
		return "offscreen"
	case TextureBackbuffer:
		return "backbuffer"
	}
	return fmt.Sprintf("TextureType(%d)", int(t))
}

// Texture describes a texture of the device. Backing memory is
// managed by the renderer, not by this package.
type Texture struct {
	Type   TextureType
	Width  int
	Height int
	Format device.Format
}
