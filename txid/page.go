package txid

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	ondemandScriptRe = regexp.MustCompile(`['|"]{1}ondemand\.s['|"]{1}:\s*['|"]{1}([\w]*)['|"]{1}`)
	hashIndicesRe    = regexp.MustCompile(`\(\w{1}\[(\d{1,2})\],\s*16\)`)

	verificationMetaRe  = regexp.MustCompile(`<meta[^>]+name=["']twitter-site-verification["'][^>]+content=["']([^"']+)["']`)
	verificationMetaRe2 = regexp.MustCompile(`<meta[^>]+content=["']([^"']+)["'][^>]+name=["']twitter-site-verification["']`)
)

// siteVerificationKey extracts the base64 verification key from the
// homepage's meta tags, whichever attribute order the markup uses.
func siteVerificationKey(html string) string {
	if m := verificationMetaRe.FindStringSubmatch(html); len(m) > 1 {
		return m[1]
	}
	if m := verificationMetaRe2.FindStringSubmatch(html); len(m) > 1 {
		return m[1]
	}
	return ""
}

// ondemandScriptURL resolves the versioned ondemand.s script URL referenced
// by the homepage.
func ondemandScriptURL(html string) string {
	if m := ondemandScriptRe.FindStringSubmatch(html); len(m) > 1 {
		return "https://abs.twimg.com/responsive-web/client-web/ondemand.s." + m[1] + "a.js"
	}
	return ""
}

// hashIndices pulls the key byte indices out of the ondemand script. The
// first index selects the frame row; the rest drive the frame time.
func hashIndices(script string) (int, []int) {
	matches := hashIndicesRe.FindAllStringSubmatch(script, -1)
	if len(matches) == 0 {
		return 0, nil
	}

	indices := make([]int, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			if idx, err := strconv.Atoi(m[1]); err == nil {
				indices = append(indices, idx)
			}
		}
	}
	if len(indices) == 0 {
		return 0, nil
	}
	return indices[0], indices[1:]
}

// loadingFrames extracts the four loading-x-anim SVG animation paths from
// the homepage, each parsed into rows of curve integers.
func loadingFrames(html string) [][][]int {
	frames := make([][][]int, 4)
	for i := 0; i < 4; i++ {
		svgRe := regexp.MustCompile(`<svg[^>]*id=["']loading-x-anim-` + strconv.Itoa(i) + `["'][^>]*>[\s\S]*?</svg>`)
		svg := svgRe.FindString(html)
		if svg == "" {
			continue
		}

		// The animation path carries fill #1d9bf008; attribute order varies.
		pathRe := regexp.MustCompile(`<path[^>]*d=["']([^"']+)["'][^>]*fill=["']#1d9bf008["']`)
		m := pathRe.FindStringSubmatch(svg)
		if len(m) < 2 {
			pathRe2 := regexp.MustCompile(`<path[^>]*fill=["']#1d9bf008["'][^>]*d=["']([^"']+)["']`)
			m = pathRe2.FindStringSubmatch(svg)
			if len(m) < 2 {
				continue
			}
		}
		frames[i] = pathRows(m[1])
	}
	return frames
}

// pathRows splits an SVG path's cubic segments into integer rows.
func pathRows(d string) [][]int {
	segments := strings.Split(d, "C")
	rows := make([][]int, 0, len(segments))
	numRe := regexp.MustCompile(`-?\d+`)
	for idx, segment := range segments {
		if idx == 0 {
			continue
		}
		nums := numRe.FindAllString(segment, -1)
		if len(nums) == 0 {
			continue
		}
		row := make([]int, 0, len(nums))
		for _, n := range nums {
			if val, err := strconv.Atoi(n); err == nil {
				row = append(row, val)
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
