package txid

import (
	"fmt"
	"math"
	"strings"
)

// bezier evaluates the cubic bezier easing curve the loading animation
// uses, matching the browser's implementation bit for bit.
type bezier struct {
	curves []float64
}

func newBezier(curves []float64) *bezier {
	return &bezier{curves: curves}
}

func (b *bezier) valueAt(t float64) float64 {
	var startGradient float64
	var endGradient float64
	start := 0.0
	mid := 0.0
	end := 1.0

	if t <= 0.0 {
		if b.curves[0] > 0.0 {
			startGradient = b.curves[1] / b.curves[0]
		} else if b.curves[1] == 0.0 && b.curves[2] > 0.0 {
			startGradient = b.curves[3] / b.curves[2]
		}
		return startGradient * t
	}

	if t >= 1.0 {
		if b.curves[2] < 1.0 {
			endGradient = (b.curves[3] - 1.0) / (b.curves[2] - 1.0)
		} else if b.curves[2] == 1.0 && b.curves[0] < 1.0 {
			endGradient = (b.curves[1] - 1.0) / (b.curves[0] - 1.0)
		}
		return 1.0 + endGradient*(t-1.0)
	}

	for start < end {
		mid = (start + end) / 2
		xEst := bezierCalc(b.curves[0], b.curves[2], mid)
		if math.Abs(t-xEst) < 0.00001 {
			return bezierCalc(b.curves[1], b.curves[3], mid)
		}
		if xEst < t {
			start = mid
		} else {
			end = mid
		}
	}
	return bezierCalc(b.curves[1], b.curves[3], mid)
}

func bezierCalc(a, b, m float64) float64 {
	return 3.0*a*(1-m)*(1-m)*m + 3.0*b*(1-m)*m*m + m*m*m
}

// lerp interpolates element-wise between two vectors.
func lerp(from, to []float64, f float64) []float64 {
	out := make([]float64, len(from))
	for i := range from {
		out[i] = from[i]*(1-f) + to[i]*f
	}
	return out
}

// rotationMatrix converts a rotation in degrees to a 2x2 matrix.
func rotationMatrix(degrees float64) []float64 {
	rad := degrees * math.Pi / 180
	return []float64{math.Cos(rad), -math.Sin(rad), math.Sin(rad), math.Cos(rad)}
}

// roundJS rounds half away from zero, the way Math.round does.
func roundJS(num float64) float64 {
	x := math.Floor(num)
	if (num - x) >= 0.5 {
		x = math.Ceil(num)
	}
	return math.Copysign(x, num)
}

// oddShift is the lower interpolation bound for odd curve positions.
func oddShift(num int) float64 {
	if num%2 != 0 {
		return -1.0
	}
	return 0.0
}

// hexFloat formats a float in hexadecimal, fractional digits included,
// matching Number.prototype.toString(16).
func hexFloat(x float64) string {
	var result []string
	quotient := int(x)
	fraction := x - float64(quotient)

	for quotient > 0 {
		quotient = int(x / 16)
		remainder := int(x - float64(quotient)*16)

		if remainder > 9 {
			result = append([]string{string(rune(remainder + 55))}, result...)
		} else {
			result = append([]string{fmt.Sprintf("%d", remainder)}, result...)
		}
		x = float64(quotient)
	}

	if fraction == 0 {
		return strings.Join(result, "")
	}

	result = append(result, ".")

	for fraction > 0 {
		fraction *= 16
		integer := int(fraction)
		fraction -= float64(integer)

		if integer > 9 {
			result = append(result, string(rune(integer+55)))
		} else {
			result = append(result, fmt.Sprintf("%d", integer))
		}
	}

	return strings.Join(result, "")
}
