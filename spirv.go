package minecart

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	vk "github.com/vulkan-go/vulkan"
)

const spirvMagic = 0x07230203

const opEntryPoint = 15

// ShaderStage is a programmable pipeline stage.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s ShaderStage) VK() vk.ShaderStageFlagBits {
	switch s {
	case StageFragment:
		return vk.ShaderStageFragmentBit
	case StageCompute:
		return vk.ShaderStageComputeBit
	}
	return vk.ShaderStageVertexBit
}

// executionModel maps SPIR-V execution models onto stages.
var executionModel = map[uint32]ShaderStage{
	0: StageVertex,
	4: StageFragment,
	5: StageCompute,
}

// EntryPoint is an entry point declared by a SPIR-V module.
type EntryPoint struct {
	Name  string
	Stage ShaderStage
}

// CompileWGSL compiles WGSL source to SPIR-V.
func CompileWGSL(source string) ([]uint32, error) {
	code, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	return SPIRVWords(code)
}

// SPIRVWords converts a little endian SPIR-V byte stream to words.
func SPIRVWords(code []byte) ([]uint32, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("spir-v size %d is not a positive multiple of 4", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}

// ReflectSPIRV checks the module header and returns the declared entry points.
func ReflectSPIRV(code []uint32) ([]EntryPoint, error) {
	if len(code) < 5 {
		return nil, errors.New("spir-v module shorter than its header")
	}
	if code[0] != spirvMagic {
		return nil, fmt.Errorf("bad spir-v magic %#08x", code[0])
	}

	var entries []EntryPoint
	for i := 5; i < len(code); {
		count := int(code[i] >> 16)
		op := code[i] & 0xffff
		if count == 0 {
			return nil, fmt.Errorf("zero length instruction at word %d", i)
		}
		if i+count > len(code) {
			return nil, fmt.Errorf("instruction at word %d runs past the end of the module", i)
		}
		if op == opEntryPoint && count >= 4 {
			stage, ok := executionModel[code[i+1]]
			if ok {
				entries = append(entries, EntryPoint{
					Name:  decodeSPIRVString(code[i+3 : i+count]),
					Stage: stage,
				})
			}
		}
		i += count
	}
	return entries, nil
}

// FindEntryPoint reports whether code declares name for stage.
func FindEntryPoint(entries []EntryPoint, name string, stage ShaderStage) bool {
	for _, e := range entries {
		if e.Name == name && e.Stage == stage {
			return true
		}
	}
	return false
}

func decodeSPIRVString(words []uint32) string {
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return string(b)
			}
			b = append(b, c)
		}
	}
	return string(b)
}
