//go:build !nogpu

package wgpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/glyph.wgsl
var glyphWGSL string

// createShaderModule builds the glyph shader module, preferring native WGSL
// ingestion. Backends that only accept SPIR-V reject the WGSL source, so on
// error the source is compiled through naga and resubmitted as words.
func createShaderModule(device hal.Device, label string) (hal.ShaderModule, error) {
	module, wgslErr := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: glyphWGSL},
	})
	if wgslErr == nil {
		return module, nil
	}

	words, err := compileWGSLToSPIRV(glyphWGSL)
	if err != nil {
		return nil, fmt.Errorf("wgpu: shader %q rejected as WGSL (%v) and naga fallback failed: %w", label, wgslErr, err)
	}
	module, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: shader %q rejected as SPIR-V: %w", label, err)
	}
	return module, nil
}

// compileWGSLToSPIRV lowers WGSL to SPIR-V words via the pure Go naga port.
func compileWGSLToSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("naga compile: %w", err)
	}
	if len(spirvBytes) == 0 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("naga produced %d bytes, want a positive multiple of 4", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4 : i*4+4])
	}
	const spirvMagic = 0x07230203
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("naga output missing SPIR-V magic: got %#x", words[0])
	}
	return words, nil
}
