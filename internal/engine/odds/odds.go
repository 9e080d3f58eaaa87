package odds

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPrice indica cotação malformada ou fora do intervalo válido.
// Uma cotação inválida é descartada individualmente; nunca aborta o batch.
var ErrInvalidPrice = errors.New("invalid price")

// Format identifica a notação de origem de uma cotação
type Format string

const (
	FormatDecimal  Format = "decimal"
	FormatAmerican Format = "american"
)

// Normalize converte uma cotação bruta para multiplicador decimal canônico.
// Decimal é pass-through validado (> 1.0); americano usa a conversão padrão:
// positivo 1 + p/100, negativo 1 + 100/|p|.
func Normalize(value float64, format Format) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: non-numeric value", ErrInvalidPrice)
	}

	switch format {
	case FormatDecimal:
		// preço 1.0 exato significaria probabilidade 1 e é rejeitado, não ajustado
		if value <= 1.0 {
			return 0, fmt.Errorf("%w: decimal price %.4f must be > 1.0", ErrInvalidPrice, value)
		}
		return value, nil

	case FormatAmerican:
		if math.Abs(value) < 100 {
			return 0, fmt.Errorf("%w: american price %.0f must satisfy |p| >= 100", ErrInvalidPrice, value)
		}
		if value > 0 {
			return 1 + value/100, nil
		}
		return 1 + 100/math.Abs(value), nil

	default:
		return 0, fmt.Errorf("%w: unsupported format %q", ErrInvalidPrice, format)
	}
}

// ImpliedProbability retorna a probabilidade implícita bruta (com vig) de um
// preço decimal: 1/price. Sempre produzida junto da normalização.
func ImpliedProbability(decimalPrice float64) float64 {
	if decimalPrice <= 0 {
		return 0
	}
	return 1 / decimalPrice
}

// ToAmerican converte preço decimal para a notação americana (inversa de
// Normalize). Em 2.0 as notações +100 e -100 coincidem; a forma canônica
// devolvida é +100.
func ToAmerican(decimalPrice float64) float64 {
	if decimalPrice >= 2.0 {
		return (decimalPrice - 1) * 100
	}
	return -100 / (decimalPrice - 1)
}
