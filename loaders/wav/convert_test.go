package wav

import "testing"

func TestConvertIntToFloat32(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		in       []int
		want     []float32
	}{
		{"8 bit is unsigned", 8, []int{128, 0, 192}, []float32{0, -1, 0.5}},
		{"16 bit", 16, []int{0, -32768, 16384}, []float32{0, -1, 0.5}},
		{"24 bit", 24, []int{-8388608, 4194304}, []float32{-1, 0.5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := convertIntToFloat32(tc.in, tc.bitDepth)
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("sample %d: got %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}
