// Package resilience содержит механизмы отказоустойчивости: экспоненциальный
// отступ с джиттером, повтор операций и Circuit Breaker.
package resilience

import (
	"math/rand/v2"
	"time"
)

// Backoff описывает экспоненциальный отступ с ограничением и джиттером.
type Backoff struct {
	// Base - задержка перед второй попыткой.
	Base time.Duration
	// Max - верхняя граница задержки.
	Max time.Duration
	// Factor - множитель роста задержки.
	Factor float64
	// Jitter - доля задержки в [0, 1], на которую она случайно уменьшается.
	Jitter float64
}

// Delay возвращает задержку после неудачной попытки с номером attempt (начиная с 1).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	factor := b.Factor
	if factor < 1 {
		factor = 2
	}

	delay := float64(b.Base)
	for i := 1; i < attempt; i++ {
		delay *= factor
		if b.Max > 0 && delay >= float64(b.Max) {
			delay = float64(b.Max)
			break
		}
	}
	if b.Max > 0 && delay > float64(b.Max) {
		delay = float64(b.Max)
	}

	if b.Jitter > 0 {
		jitter := b.Jitter
		if jitter > 1 {
			jitter = 1
		}
		delay -= delay * jitter * rand.Float64()
	}

	return time.Duration(delay)
}
