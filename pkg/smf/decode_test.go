package smf

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

// createTestSMF builds a complete SMF file with every optional section
// present: heightmap, metal map, type map, tile index, minimap, a grass
// map referenced from the extra-header chain, and a features section
// with two type names and two records.
func createTestSMF(width, length int32, flatU16 uint16) []byte {
	verts := int(width+1) * int(length+1)
	halfLen := int(width/2) * int(length/2)
	quarterLen := int(width/4) * int(length/4)

	h := Header{
		Version:         1,
		ID:              0xCAFE,
		Width:           width,
		Length:          length,
		SquareSize:      8,
		TexelsPerSquare: 8,
		TileSize:        32,
		MinHeight:       0,
		MaxHeight:       256,
		NumExtraHeaders: 1,
	}

	ofs := int32(HeaderSize + 12) // header + grass extra header
	h.OfsHeightMap = ofs
	ofs += int32(verts * 2)
	h.OfsMetalMap = ofs
	ofs += int32(halfLen)
	h.OfsTypeMap = ofs
	ofs += int32(halfLen)
	h.OfsTileIndex = ofs
	ofs += int32(quarterLen * 4)
	h.OfsMiniMap = ofs
	ofs += MiniMapSize
	grassOfs := ofs
	ofs += int32(quarterLen)
	h.OfsFeatures = ofs

	buf := new(bytes.Buffer)
	hdr := make([]byte, HeaderSize)
	writeHeader(hdr, &h)
	buf.Write(hdr)

	// Grass extra header {size, type, offset}.
	binary.Write(buf, binary.LittleEndian, int32(12))
	binary.Write(buf, binary.LittleEndian, int32(ExtraHeaderGrass))
	binary.Write(buf, binary.LittleEndian, grassOfs)

	for i := 0; i < verts; i++ {
		binary.Write(buf, binary.LittleEndian, flatU16)
	}
	for i := 0; i < halfLen; i++ {
		buf.WriteByte(byte(100 + i)) // metal
	}
	for i := 0; i < halfLen; i++ {
		buf.WriteByte(byte(i)) // type
	}
	for i := 0; i < quarterLen; i++ {
		binary.Write(buf, binary.LittleEndian, int32(i*7))
	}
	buf.Write(make([]byte, MiniMapSize))
	for i := 0; i < quarterLen; i++ {
		buf.WriteByte(byte(200 + i)) // grass
	}

	// Features: 2 records, 2 type names.
	binary.Write(buf, binary.LittleEndian, int32(2))
	binary.Write(buf, binary.LittleEndian, int32(2))
	buf.WriteString("tree\x00")
	buf.WriteString("rock\x00")
	for i := 0; i < 2; i++ {
		binary.Write(buf, binary.LittleEndian, int32(i))
		binary.Write(buf, binary.LittleEndian, float32(10*i))
		binary.Write(buf, binary.LittleEndian, float32(5))
		binary.Write(buf, binary.LittleEndian, float32(20*i))
		binary.Write(buf, binary.LittleEndian, float32(90))
		binary.Write(buf, binary.LittleEndian, float32(1))
	}

	return buf.Bytes()
}

func TestParse_ValidFile(t *testing.T) {
	data := createTestSMF(8, 4, 32768)

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if m.Header.Width != 8 || m.Header.Length != 4 {
		t.Errorf("expected 8x4, got %dx%d", m.Header.Width, m.Header.Length)
	}
	if len(m.RawHeights) != 9*5 {
		t.Errorf("expected 45 height samples, got %d", len(m.RawHeights))
	}
	if len(m.Heights) != len(m.RawHeights) {
		t.Errorf("float heights length %d != raw length %d", len(m.Heights), len(m.RawHeights))
	}

	want := Dequantize(32768, 0, 256)
	for i, h := range m.Heights {
		if h != want {
			t.Fatalf("height[%d] = %v, want %v", i, h, want)
		}
	}

	if len(m.MetalMap) != 8 || m.MetalMap[0] != 100 {
		t.Errorf("metal map wrong: len %d, first %d", len(m.MetalMap), m.MetalMap[0])
	}
	if len(m.TypeMap) != 8 || m.TypeMap[3] != 3 {
		t.Errorf("type map wrong: len %d", len(m.TypeMap))
	}
	if len(m.TileIndex) != 2 || m.TileIndex[1] != 7 {
		t.Errorf("tile index wrong: %v", m.TileIndex)
	}
	if len(m.MiniMap) != MiniMapSize {
		t.Errorf("minimap length %d, want %d", len(m.MiniMap), MiniMapSize)
	}
	if len(m.GrassMap) != 2 || m.GrassMap[0] != 200 {
		t.Errorf("grass map wrong: %v", m.GrassMap)
	}

	if m.Features == nil {
		t.Fatal("features section missing")
	}
	if len(m.Features.TypeNames) != 2 || m.Features.TypeNames[0] != "tree" || m.Features.TypeNames[1] != "rock" {
		t.Errorf("feature type names wrong: %v", m.Features.TypeNames)
	}
	if len(m.Features.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(m.Features.Features))
	}
	f := m.Features.Features[1]
	if f.Type != 1 || f.X != 10 || f.Y != 5 || f.Z != 20 || f.Rotation != 90 || f.RelativeSize != 1 {
		t.Errorf("feature record wrong: %+v", f)
	}

	if len(m.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", m.Warnings)
	}
}

func TestParse_InvalidMagic(t *testing.T) {
	data := createTestSMF(4, 4, 0)
	copy(data[0:], "not a map file\x00\x00")

	if _, err := Parse(data); err != ErrInvalidMagic {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestParse_TruncatedHeader(t *testing.T) {
	if _, err := Parse([]byte(Magic)); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestParse_BadDimensions(t *testing.T) {
	data := createTestSMF(4, 4, 0)
	binary.LittleEndian.PutUint32(data[24:], 0) // width = 0

	_, err := Parse(data)
	if err == nil || !strings.Contains(err.Error(), "dimensions") {
		t.Errorf("expected dimension error, got %v", err)
	}
}

func TestParse_VersionMismatchIsWarning(t *testing.T) {
	data := createTestSMF(4, 4, 100)
	binary.LittleEndian.PutUint32(data[16:], 2)

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("version 2 should decode with a warning, got error: %v", err)
	}
	if !hasWarning(m, "version") {
		t.Errorf("expected version warning, got %v", m.Warnings)
	}
}

func TestParse_HeightmapOutOfBoundsIsFatal(t *testing.T) {
	data := createTestSMF(4, 4, 0)
	binary.LittleEndian.PutUint32(data[52:], uint32(len(data))) // ofsHeightMap past EOF

	_, err := Parse(data)
	if err == nil || !strings.Contains(err.Error(), "heightmap") {
		t.Errorf("expected heightmap error, got %v", err)
	}
}

// A broken optional section must not prevent decode of the rest.
func TestParse_SectionIndependence(t *testing.T) {
	tests := []struct {
		name      string
		headerOfs int
		check     func(*Map) bool
	}{
		{"metal map", 68, func(m *Map) bool { return m.MetalMap == nil }},
		{"type map", 56, func(m *Map) bool { return m.TypeMap == nil }},
		{"tile index", 60, func(m *Map) bool { return m.TileIndex == nil }},
		{"minimap", 64, func(m *Map) bool { return m.MiniMap == nil }},
		{"features", 72, func(m *Map) bool { return m.Features == nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := createTestSMF(8, 4, 1000)
			binary.LittleEndian.PutUint32(data[tc.headerOfs:], uint32(len(data)-1))

			m, err := Parse(data)
			if err != nil {
				t.Fatalf("decode should survive a broken %s section: %v", tc.name, err)
			}
			if !tc.check(m) {
				t.Errorf("%s should be absent", tc.name)
			}
			if len(m.Heights) != 9*5 {
				t.Errorf("heightmap should still decode, got %d samples", len(m.Heights))
			}
			if len(m.Warnings) == 0 {
				t.Error("expected a warning for the skipped section")
			}
		})
	}
}

func TestParse_TruncatedFeatures(t *testing.T) {
	data := createTestSMF(8, 4, 0)
	// Declare more features than the file holds.
	featOfs := int(binary.LittleEndian.Uint32(data[72:]))
	binary.LittleEndian.PutUint32(data[featOfs:], 500)

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("truncated features must not fail decode: %v", err)
	}
	if m.Features == nil {
		t.Fatal("features section should still be present")
	}
	if m.Features.Declared != 500 {
		t.Errorf("declared count = %d, want 500", m.Features.Declared)
	}
	if len(m.Features.Features) != 2 {
		t.Errorf("expected the 2 records that fit, got %d", len(m.Features.Features))
	}
	if !hasWarning(m, "features") {
		t.Errorf("expected a truncation warning, got %v", m.Warnings)
	}
}

func TestParse_MalformedExtraHeaderChain(t *testing.T) {
	data := createTestSMF(8, 4, 0)
	// Corrupt the grass extra header size.
	binary.LittleEndian.PutUint32(data[HeaderSize:], 4)

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("bad extra header must not fail decode: %v", err)
	}
	if m.GrassMap != nil {
		t.Error("grass map should be absent when the chain is malformed")
	}
	if !hasWarning(m, "extra header") {
		t.Errorf("expected extra header warning, got %v", m.Warnings)
	}
}

func TestParse_MagicWithoutFullPadding(t *testing.T) {
	data := createTestSMF(4, 4, 0)
	// The decoder must not require the trailing padding byte.
	data[len(Magic)] = 0x7F

	if _, err := Parse(data); err != nil {
		t.Errorf("magic without NUL padding should parse, got %v", err)
	}
}

// Decoding a flat EncodeFlat map reproduces the quantized height.
func TestParse_FlatRoundTrip(t *testing.T) {
	data, err := EncodeFlat(FlatSpec{
		Width: 2, Length: 2,
		MinHeight: 0, MaxHeight: 100,
		FlatHeightU16: 32768,
	})
	if err != nil {
		t.Fatalf("EncodeFlat failed: %v", err)
	}

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(m.Heights) != 9 {
		t.Fatalf("expected 9 samples, got %d", len(m.Heights))
	}
	for i, h := range m.Heights {
		if math.Abs(float64(h)-50.0008) > 1e-3 {
			t.Errorf("height[%d] = %v, want ~50.0008", i, h)
		}
	}
}

func hasWarning(m *Map, substr string) bool {
	for _, w := range m.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
