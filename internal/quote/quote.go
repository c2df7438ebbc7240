// Package quote рассчитывает сумму к оплате в выбранном активе.
//
// Для стейблкоинов сумма равна долларовой цене плана с двумя знаками после
// запятой, курс не нужен. Для волатильных активов сумма считается как
// priceUSD/rate и усекается (не округляется) до восьми знаков: покупателя
// нельзя просить отправить меньше долларового эквивалента из-за округления.
package quote

import (
	"fmt"
	"math/big"

	"github.com/kseleznyov/crypto-checkout/internal/models"
)

// ErrInvalidRate возвращается при нулевом или отрицательном курсе.
var ErrInvalidRate = fmt.Errorf("quote: rate must be positive")

const cryptoScale = 8

var pow8 = new(big.Int).Exp(big.NewInt(10), big.NewInt(cryptoScale), nil)

// ForStable форматирует долларовую цену плана как сумму в стейблкоине.
func ForStable(priceUSD float64) string {
	return fmt.Sprintf("%.2f", priceUSD)
}

// ForFloating возвращает сумму priceUSD/rate, усечённую вниз до восьми
// знаков после запятой и отформатированную с хвостовыми нулями.
// Вычисление ведётся на big.Rat, чтобы усечение было точным.
func ForFloating(priceUSD, rate float64) (string, error) {
	if rate <= 0 {
		return "", ErrInvalidRate
	}

	price := new(big.Rat).SetFloat64(priceUSD)
	divisor := new(big.Rat).SetFloat64(rate)
	amount := new(big.Rat).Quo(price, divisor)

	// floor(amount * 1e8): целочисленное деление числителя на знаменатель
	scaled := new(big.Rat).Mul(amount, new(big.Rat).SetInt(pow8))
	units := new(big.Int).Quo(scaled.Num(), scaled.Denom())

	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(units, pow8, frac)
	return fmt.Sprintf("%s.%08d", whole.String(), frac), nil
}

// ForAsset выбирает правило расчёта по типу актива.
func ForAsset(asset models.Asset, priceUSD, rate float64) (string, error) {
	if asset.Stable {
		return ForStable(priceUSD), nil
	}
	return ForFloating(priceUSD, rate)
}
