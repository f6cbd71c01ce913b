package ta

import (
	"errors"
	"math"
)

const DefaultRSIPeriod = 14

var ErrInsufficientData = errors.New("insufficient price history")

// RSI computes the relative strength index over the last period price
// changes using simple averages of gains and losses. It needs at least
// period+1 closes.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	if len(closes) < period+1 {
		return 0, ErrInsufficientData
	}

	var gainSum, lossSum float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	rsi := rsiFromAvg(gainSum/float64(period), lossSum/float64(period))
	if math.IsNaN(rsi) {
		return 0, errors.New("rsi is not a number")
	}
	return rsi, nil
}

// rsiFromAvg saturates at 100 when there are no losses, which also covers a
// flat window.
func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	if avgGain == 0 {
		return 0
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// LastChange is the difference between the two most recent closes.
func LastChange(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	return closes[len(closes)-1] - closes[len(closes)-2]
}
