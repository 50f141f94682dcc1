package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired делает неверифицированный разбор access-токена и смотрит
// только на claim exp. Подпись не проверяется: это дело бэкенда. Токен без
// exp или неразборчивый токен не считается истёкшим — сервер сам ответит
// 401, если токен негоден.
func TokenExpired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
