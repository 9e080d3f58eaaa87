package clv

import "errors"

// ErrMissingClosingPrice indica que nenhum benchmark de fechamento foi
// registrado para a chave antes do lock do evento. O erro sobe ao chamador;
// não há retry no engine.
var ErrMissingClosingPrice = errors.New("missing closing price")

// Compute calcula o Closing Line Value: ((entry/closing) - 1) * 100.
// CLV positivo significa que o apostador conseguiu preço melhor que a linha
// final do mercado, o sinal clássico de skill. Função pura; independe de
// qualquer ciclo de scan.
func Compute(entryPrice, closingPrice float64) (float64, error) {
	if closingPrice <= 1.0 {
		return 0, ErrMissingClosingPrice
	}
	return ((entryPrice / closingPrice) - 1) * 100, nil
}
