package signal

import (
	"strings"
	"testing"

	"github.com/pauljbernard/headelf/internal/model"
	"github.com/pauljbernard/headelf/internal/pattern"
)

func BenchmarkAnalyzeText_Short(b *testing.B) {
	reg := pattern.Builtin()
	sig := model.TextSignal{Text: "Our manufacturing plant improved OEE and throughput this quarter"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AnalyzeText(reg, model.AllIndustries, sig)
	}
}

func BenchmarkAnalyzeText_Long(b *testing.B) {
	reg := pattern.Builtin()
	sig := model.TextSignal{Text: strings.Repeat("quarterly review of plant throughput and banking ", 3000)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AnalyzeText(reg, model.AllIndustries, sig)
	}
}
