package utils

import "math"

// RoundWithTwoDecimalPlace arredonda para duas casas decimais, o formato
// padrão das métricas monetárias e percentuais do dashboard
func RoundWithTwoDecimalPlace(f float64) float64 {
	if f == 0 {
		return 0
	}

	return math.Round(f*100) / 100
}
