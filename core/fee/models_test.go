package fee

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/okfines/core/student"
)

func TestFeeAppliesTo(t *testing.T) {
	year2A := student.Student{ID: "MMC2025-00101", YearLevel: "2", Section: "A", SocietyID: "soc1"}
	year2B := student.Student{ID: "MMC2025-00102", YearLevel: "2", Section: "B", SocietyID: "soc1"}
	year3A := student.Student{ID: "MMC2025-00103", YearLevel: "3", Section: "A", SocietyID: "soc1"}

	tests := []struct {
		name string
		fee  Fee
		st   student.Student
		want bool
	}{
		{name: "no targets matches everyone", fee: Fee{SocietyID: "soc1"}, st: year3A, want: true},
		{name: "both targets match", fee: Fee{TargetYearLevel: "2", TargetSection: "A"}, st: year2A, want: true},
		{name: "section mismatch", fee: Fee{TargetYearLevel: "2", TargetSection: "A"}, st: year2B, want: false},
		{name: "year mismatch", fee: Fee{TargetYearLevel: "2", TargetSection: "A"}, st: year3A, want: false},
		{name: "year only target", fee: Fee{TargetYearLevel: "2"}, st: year2B, want: true},
		{name: "section only target", fee: Fee{TargetSection: "A"}, st: year3A, want: true},
		{name: "whitespace and case drift tolerated", fee: Fee{TargetYearLevel: " 2 ", TargetSection: "a"}, st: year2A, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fee.AppliesTo(tt.st))
		})
	}
}

func TestFeeTargeted(t *testing.T) {
	assert.False(t, Fee{}.Targeted())
	assert.True(t, Fee{TargetYearLevel: "2"}.Targeted())
	assert.True(t, Fee{TargetSection: "A"}.Targeted())
}
