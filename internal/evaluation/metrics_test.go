package evaluation

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		k         int
		want      float64
	}{
		{"all relevant in top k", []string{"i1", "i2"}, []string{"i1", "i2", "i3"}, 10, 1.0},
		{"half found", []string{"i1", "i2", "i3", "i4"}, []string{"i1", "x", "i2"}, 10, 0.5},
		{"empty results", []string{"i1"}, []string{}, 10, 0.0},
		// recall is undefined without relevant items; report 0
		{"no relevant items", []string{}, []string{"i1"}, 10, 0.0},
		{"cut off by k", []string{"i1", "i2", "i3"}, []string{"i1", "i2", "x", "y", "i3"}, 3, 2.0 / 3.0},
		{"fewer results than k", []string{"i1", "i2"}, []string{"i1"}, 10, 0.5},
		{"duplicate labels count once", []string{"i1", "i1"}, []string{"i1"}, 10, 1.0},
		{"non-positive k keeps everything", []string{"i1"}, []string{"x", "y", "i1"}, 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecallAtK(tt.relevant, tt.retrieved, tt.k)
			if !almostEqual(got, tt.want) {
				t.Errorf("RecallAtK() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMRRAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		k         int
		want      float64
	}{
		{"first result relevant", []string{"i1"}, []string{"i1", "x"}, 10, 1.0},
		{"third result relevant", []string{"i1"}, []string{"x", "y", "i1"}, 10, 1.0 / 3.0},
		{"beyond k", []string{"i1"}, []string{"x", "y", "i1"}, 2, 0.0},
		{"empty relevant", []string{}, []string{"i1"}, 10, 0.0},
		{"empty retrieved", []string{"i1"}, []string{}, 10, 0.0},
		{"first of several relevant wins", []string{"i1", "i2"}, []string{"x", "i2", "i1"}, 10, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MRRAtK(tt.relevant, tt.retrieved, tt.k)
			if !almostEqual(got, tt.want) {
				t.Errorf("MRRAtK() = %f, want %f", got, tt.want)
			}
		})
	}
}
