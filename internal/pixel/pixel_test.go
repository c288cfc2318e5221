package pixel

import (
	"reflect"
	"testing"

	"github.com/smazurov/scalerwatch/internal/colors"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

func TestLoaders(t *testing.T) {
	tests := []struct {
		name   string
		load   Loader
		pixel  []byte
		expect colors.RGB
	}{
		// 0xF800 is pure red in RGB565.
		{"RGB565-LE red", RGB565LE, []byte{0x00, 0xF8}, colors.RGB{R: 255}},
		{"RGB565-BE red", RGB565BE, []byte{0xF8, 0x00}, colors.RGB{R: 255}},
		{"BGR565-LE red", BGR565LE, []byte{0x1F, 0x00}, colors.RGB{R: 255}},
		{"BGR565-BE red", BGR565BE, []byte{0x00, 0x1F}, colors.RGB{R: 255}},
		{"RGB565-LE green", RGB565LE, []byte{0xE0, 0x07}, colors.RGB{G: 255}},
		{"RGB565-BE blue", RGB565BE, []byte{0x00, 0x1F}, colors.RGB{B: 255}},
		{"BGR565-LE blue", BGR565LE, []byte{0x00, 0xF8}, colors.RGB{B: 255}},
		{"RGB565-LE white", RGB565LE, []byte{0xFF, 0xFF}, colors.RGB{R: 255, G: 255, B: 255}},
		// 0x8410: R=16, G=32, B=16.
		{"RGB565-LE mid gray", RGB565LE, []byte{0x10, 0x84}, colors.RGB{R: 131, G: 129, B: 131}},
		{"RGB24", RGB24, []byte{1, 2, 3}, colors.RGB{R: 1, G: 2, B: 3}},
		{"BGR24", BGR24, []byte{3, 1, 2}, colors.RGB{R: 1, G: 2, B: 3}},
		{"RGBA32 ignores alpha", RGBA32, []byte{10, 20, 30, 99}, colors.RGB{R: 10, G: 20, B: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.load(tt.pixel); got != tt.expect {
				t.Errorf("got %+v, want %+v", got, tt.expect)
			}
		})
	}
}

func TestLoaderFor(t *testing.T) {
	px := []byte{0x00, 0xF8, 0x00, 0x00}
	if got := LoaderFor(ascal.FormatRGB16, nil)(px); got != (colors.RGB{R: 255}) {
		t.Errorf("default RGB16 loader = %+v, want red", got)
	}
	if got := LoaderFor(ascal.FormatRGB16, RGB565BE)(px); got.R != 0 {
		t.Errorf("RGB565BE loader = %+v, want no red", got)
	}
	if got := LoaderFor(ascal.FormatRGB24, nil)(px); got != (colors.RGB{R: 0, G: 0xF8, B: 0}) {
		t.Errorf("RGB24 loader = %+v", got)
	}
	if LoaderFor(ascal.FormatRGBA32, nil) == nil {
		t.Error("RGBA32 loader is nil")
	}
	if LoaderFor(ascal.PixelFormat(9), nil) != nil {
		t.Error("unknown format should have no loader")
	}
}

func TestVariantByName(t *testing.T) {
	v, ok := VariantByName("BGR565-BE")
	if !ok || v.Name != "BGR565-BE" {
		t.Fatalf("VariantByName() = %+v, %v", v, ok)
	}
	if _, ok := VariantByName("YUV"); ok {
		t.Error("unexpected variant YUV")
	}
}

func TestGrid(t *testing.T) {
	got := Grid(5, 3, 20, 3, 2)
	want := []int{0, 6, 12, 40, 46, 52}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Grid() = %v, want %v", got, want)
	}

	if got := Grid(2, 1, 8, 4, 0); !reflect.DeepEqual(got, []int{0, 4}) {
		t.Errorf("Grid(step 0) = %v, want step 1", got)
	}
	if got := Grid(0, 10, 8, 4, 1); len(got) != 0 {
		t.Errorf("Grid(width 0) = %v, want empty", got)
	}
}
