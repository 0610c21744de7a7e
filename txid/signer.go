package txid

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

const (
	// epochMillis is the fixed epoch the web client subtracts from wall
	// time before signing.
	epochMillis = 1682924400000

	extraByte = 3
	keyword   = "obfiowerehiring"
)

// signer holds the derived key material for one refresh window.
type signer struct {
	keyBytes     []byte
	animationKey string
	rowIndex     int
	keyIndices   []int
}

func newSigner(homepage, script string) (*signer, error) {
	s := &signer{}

	rowIndex, keyIndices := hashIndices(script)
	s.rowIndex = rowIndex
	s.keyIndices = keyIndices

	key := siteVerificationKey(homepage)
	if key == "" {
		return nil, fmt.Errorf("twitter-site-verification meta tag not found")
	}
	keyBytes, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("decode verification key: %w", err)
	}
	s.keyBytes = keyBytes

	animKey, err := s.buildAnimationKey(homepage)
	if err != nil {
		return nil, fmt.Errorf("build animation key: %w", err)
	}
	s.animationKey = animKey

	return s, nil
}

// frameRows picks the SVG frame the key bytes select and returns its rows.
func (s *signer) frameRows(homepage string) [][]int {
	frames := loadingFrames(homepage)
	if len(frames) == 0 || len(s.keyBytes) < 6 {
		return nil
	}
	frameIndex := int(s.keyBytes[5]) % 4
	if frameIndex >= len(frames) || len(frames[frameIndex]) == 0 {
		return nil
	}
	return frames[frameIndex]
}

// scale maps a byte value onto [minVal, maxVal].
func (s *signer) scale(value, minVal, maxVal float64, rounding bool) float64 {
	result := value*(maxVal-minVal)/255 + minVal
	if rounding {
		return math.Floor(result)
	}
	return math.Round(result*100) / 100
}

// animate replays the loading animation at targetTime and encodes the
// resulting color and rotation matrix as the animation key.
func (s *signer) animate(row []int, targetTime float64) string {
	if len(row) < 11 {
		return ""
	}
	fromColor := []float64{float64(row[0]), float64(row[1]), float64(row[2]), 1}
	toColor := []float64{float64(row[3]), float64(row[4]), float64(row[5]), 1}
	fromRotation := []float64{0.0}
	toRotation := []float64{s.scale(float64(row[6]), 60.0, 360.0, true)}

	curveValues := row[7:]
	curves := make([]float64, len(curveValues))
	for i, item := range curveValues {
		curves[i] = s.scale(float64(item), oddShift(i), 1.0, false)
	}

	val := newBezier(curves).valueAt(targetTime)

	color := lerp(fromColor, toColor, val)
	for i := range color {
		color[i] = math.Max(0, math.Min(255, color[i]))
	}

	rotation := lerp(fromRotation, toRotation, val)
	matrix := rotationMatrix(rotation[0])

	var parts []string
	for i := 0; i < 3; i++ {
		parts = append(parts, fmt.Sprintf("%x", int(math.Round(color[i]))))
	}
	for _, value := range matrix {
		rounded := math.Round(value*100) / 100
		if rounded < 0 {
			rounded = -rounded
		}
		hexValue := hexFloat(rounded)
		switch {
		case strings.HasPrefix(hexValue, "."):
			parts = append(parts, "0"+strings.ToLower(hexValue))
		case hexValue == "":
			parts = append(parts, "0")
		default:
			parts = append(parts, hexValue)
		}
	}
	parts = append(parts, "0", "0")

	return strings.NewReplacer(".", "", "-", "").Replace(strings.Join(parts, ""))
}

func (s *signer) buildAnimationKey(homepage string) (string, error) {
	const totalTime = 4096.0

	if len(s.keyIndices) == 0 {
		return "", fmt.Errorf("no key byte indices")
	}

	rowIndex := 0
	if s.rowIndex < len(s.keyBytes) {
		rowIndex = int(s.keyBytes[s.rowIndex]) % 16
	}

	frameTime := 1.0
	for _, idx := range s.keyIndices {
		if idx < len(s.keyBytes) {
			frameTime *= float64(int(s.keyBytes[idx]) % 16)
		}
	}
	frameTime = roundJS(frameTime/10) * 10

	rows := s.frameRows(homepage)
	if rows == nil || rowIndex >= len(rows) {
		return "", fmt.Errorf("failed to extract SVG frame rows")
	}

	return s.animate(rows[rowIndex], frameTime/totalTime), nil
}

// id computes the transaction id for one method+path pair.
func (s *signer) id(method, path string) string {
	// Only the path participates in the hash.
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}

	stamp := int(time.Now().UnixMilli()-epochMillis) / 1000
	stampBytes := make([]byte, 4)
	for i := 0; i < 4; i++ {
		stampBytes[i] = byte((stamp >> (i * 8)) & 0xFF)
	}

	hashInput := fmt.Sprintf("%s!%s!%d%s%s", method, path, stamp, keyword, s.animationKey)
	hash := sha256.Sum256([]byte(hashInput))

	payload := make([]byte, 0, len(s.keyBytes)+4+16+1)
	payload = append(payload, s.keyBytes...)
	payload = append(payload, stampBytes...)
	payload = append(payload, hash[:16]...)
	payload = append(payload, byte(extraByte))

	xorKey := byte(rand.Intn(256))
	out := make([]byte, len(payload)+1)
	out[0] = xorKey
	for i, b := range payload {
		out[i+1] = b ^ xorKey
	}

	return strings.TrimRight(base64.StdEncoding.EncodeToString(out), "=")
}
