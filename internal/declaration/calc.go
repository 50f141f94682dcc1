// Package declaration содержит локальный расчёт ориентировочного налога
// для мастера декларации. Это оценка для отображения, а не подача
// декларации: настоящий расчёт делает бэкенд.
package declaration

import (
	"strconv"
	"strings"
)

// Rate — единая ставка налога на доход, используемая в оценке.
const Rate = 0.19

// ParseAmount разбирает денежное поле формы. Нечисловой или пустой ввод
// считается нулём, запятая принимается как десятичный разделитель.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// Estimate возвращает ориентировочный налог: 19 % от положительной базы.
// Отрицательная база (расходы больше доходов) зажимается в ноль.
func Estimate(income, expenses float64) float64 {
	base := income - expenses
	if base < 0 {
		base = 0
	}
	return base * Rate
}
