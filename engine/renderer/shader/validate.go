package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/gogpu/naga"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

func (s *shader) Validate() error {
	spirv, err := naga.Compile(s.source)
	if err != nil {
		return fmt.Errorf("shader %s: %w", s.key, err)
	}
	if len(spirv) < 4 {
		return fmt.Errorf("shader %s: naga produced %d bytes", s.key, len(spirv))
	}
	magic := uint32(spirv[0]) | uint32(spirv[1])<<8 | uint32(spirv[2])<<16 | uint32(spirv[3])<<24
	if magic != spirvMagic {
		return fmt.Errorf("shader %s: unexpected SPIR-V magic %#x", s.key, magic)
	}
	common.Logger().Debug("shader validated", "key", s.key, "stage", s.shaderType, "spirv_bytes", len(spirv))
	return nil
}
