package minecart

import (
	"strings"
	"testing"
)

// module builds a minimal SPIR-V module declaring one entry point.
func module(model uint32, name string) []uint32 {
	nameWords := encodeString(name)
	words := []uint32{spirvMagic, 0x00010000, 0, 8, 0}
	words = append(words, 2<<16|17, 1) // OpCapability Shader
	words = append(words, uint32(3+len(nameWords))<<16|opEntryPoint, model, 1)
	words = append(words, nameWords...)
	return words
}

func encodeString(s string) []uint32 {
	b := append([]byte(s), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	w := make([]uint32, len(b)/4)
	for i := range w {
		w[i] = uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
	}
	return w
}

func TestReflectSPIRV(t *testing.T) {
	tests := []struct {
		model uint32
		name  string
		stage ShaderStage
	}{
		{0, "main", StageVertex},
		{4, "fs_main", StageFragment},
		{5, "cs", StageCompute},
	}

	for _, tc := range tests {
		entries, err := ReflectSPIRV(module(tc.model, tc.name))
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if len(entries) != 1 {
			t.Fatalf("%s: got %d entry points", tc.name, len(entries))
		}
		if entries[0].Name != tc.name || entries[0].Stage != tc.stage {
			t.Errorf("got %+v, want %s/%s", entries[0], tc.name, tc.stage)
		}
		if !FindEntryPoint(entries, tc.name, tc.stage) {
			t.Errorf("FindEntryPoint(%s) = false", tc.name)
		}
		if FindEntryPoint(entries, tc.name+"x", tc.stage) {
			t.Errorf("FindEntryPoint matched a wrong name")
		}
	}
}

func TestReflectSPIRVRejectsBrokenModules(t *testing.T) {
	good := module(0, "main")

	badMagic := append([]uint32(nil), good...)
	badMagic[0] = 0x03022307

	truncated := good[:len(good)-1]

	zero := append(append([]uint32(nil), good[:5]...), 0)

	tests := map[string][]uint32{
		"short":     {spirvMagic, 1},
		"magic":     badMagic,
		"truncated": truncated,
		"zero":      zero,
	}
	for name, code := range tests {
		if _, err := ReflectSPIRV(code); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestSPIRVWords(t *testing.T) {
	words, err := SPIRVWords([]byte{0x03, 0x02, 0x23, 0x07, 1, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if words[0] != spirvMagic || words[1] != 1 {
		t.Errorf("got %#x", words)
	}

	if _, err := SPIRVWords([]byte{1, 2, 3}); err == nil {
		t.Error("expected an error for a partial word")
	}
	if _, err := SPIRVWords(nil); err == nil {
		t.Error("expected an error for empty input")
	}
}

const testWGSL = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(@location(0) pos: vec3<f32>, @location(1) color: vec4<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(pos, 1.0);
    out.color = color;
    return out;
}

@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`

func TestCompileWGSL(t *testing.T) {
	code, err := CompileWGSL(testWGSL)
	if err != nil {
		t.Fatal(err)
	}

	entries, err := ReflectSPIRV(code)
	if err != nil {
		t.Fatal(err)
	}
	if !FindEntryPoint(entries, "vs_main", StageVertex) {
		t.Errorf("vs_main missing from %+v", entries)
	}
	if !FindEntryPoint(entries, "fs_main", StageFragment) {
		t.Errorf("fs_main missing from %+v", entries)
	}
}

func TestCompileWGSLError(t *testing.T) {
	_, err := CompileWGSL("fn broken( {")
	if err == nil {
		t.Fatal("expected a compile error")
	}
	if strings.TrimSpace(err.Error()) == "" {
		t.Error("compile error has no message")
	}
}
