package fuzzy

import (
	"math"
	"sort"
)

// maxBits is the widest pattern a single bitap pass can track.
const maxBits = 32

type bitapOptions struct {
	location           int
	distance           int
	threshold          float64
	minMatchCharLength int
	ignoreLocation     bool
	findAllMatches     bool
}

type bitapResult struct {
	isMatch bool
	score   float64
	indices [][2]int
}

type chunk struct {
	pattern    []rune
	alphabet   map[rune]uint32
	startIndex int
}

// searcher matches one folded pattern against many folded texts.
type searcher struct {
	pattern []rune
	chunks  []chunk
	opts    bitapOptions
}

func newSearcher(pattern []rune, opts bitapOptions) *searcher {
	s := &searcher{pattern: pattern, opts: opts}

	n := len(pattern)
	if n <= maxBits {
		s.addChunk(pattern, 0)
		return s
	}

	remainder := n % maxBits
	end := n - remainder
	for i := 0; i < end; i += maxBits {
		s.addChunk(pattern[i:i+maxBits], i)
	}
	if remainder > 0 {
		start := n - maxBits
		s.addChunk(pattern[start:], start)
	}
	return s
}

func (s *searcher) addChunk(pattern []rune, startIndex int) {
	s.chunks = append(s.chunks, chunk{
		pattern:    pattern,
		alphabet:   patternAlphabet(pattern),
		startIndex: startIndex,
	})
}

func patternAlphabet(pattern []rune) map[rune]uint32 {
	mask := make(map[rune]uint32, len(pattern))
	n := len(pattern)
	for i, r := range pattern {
		mask[r] |= 1 << uint(n-i-1)
	}
	return mask
}

// searchIn scores text against every chunk and averages the result.
func (s *searcher) searchIn(text []rune) bitapResult {
	if equalRunes(s.pattern, text) {
		return bitapResult{isMatch: true, score: 0, indices: [][2]int{{0, len(text) - 1}}}
	}

	var (
		all        [][2]int
		total      float64
		hasMatches bool
	)
	for _, c := range s.chunks {
		opts := s.opts
		opts.location += c.startIndex
		res := bitap(text, c.pattern, c.alphabet, opts)
		if res.isMatch {
			hasMatches = true
			all = append(all, res.indices...)
		}
		total += res.score
	}

	if !hasMatches {
		return bitapResult{score: 1}
	}
	return bitapResult{
		isMatch: true,
		score:   total / float64(len(s.chunks)),
		indices: mergeIndices(all),
	}
}

// bitap runs the approximate matching pass for a pattern of at most maxBits
// runes. Scores run from 0 (exact at the expected location) to 1.
func bitap(text, pattern []rune, alphabet map[rune]uint32, o bitapOptions) bitapResult {
	patternLen := len(pattern)
	textLen := len(text)
	expectedLocation := max(0, min(o.location, textLen))
	currentThreshold := o.threshold
	bestLocation := expectedLocation

	matchMask := make([]bool, textLen)

	// Exact substring hits tighten the threshold before the fuzzy pass.
	for {
		index := indexRunes(text, pattern, bestLocation)
		if index < 0 {
			break
		}
		score := computeScore(patternLen, 0, index, expectedLocation, o)
		currentThreshold = math.Min(score, currentThreshold)
		bestLocation = index + patternLen
		for i := 0; i < patternLen; i++ {
			matchMask[index+i] = true
		}
	}

	bestLocation = -1
	var lastBitArr []uint32
	finalScore := 1.0
	binMax := patternLen + textLen
	mask := uint32(1) << uint(patternLen-1)

	for i := 0; i < patternLen; i++ {
		// Binary search for how far from the expected location we can
		// stray with i errors and still beat the threshold.
		binMin := 0
		binMid := binMax
		for binMin < binMid {
			score := computeScore(patternLen, i, expectedLocation+binMid, expectedLocation, o)
			if score <= currentThreshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		binMax = binMid

		start := max(1, expectedLocation-binMid+1)
		var finish int
		if o.findAllMatches {
			finish = textLen
		} else {
			finish = min(expectedLocation+binMid, textLen) + patternLen
		}

		bitArr := make([]uint32, finish+2)
		bitArr[finish+1] = (uint32(1) << uint(i)) - 1

		for j := finish; j >= start; j-- {
			currentLocation := j - 1
			var charMatch uint32
			if currentLocation < textLen {
				charMatch = alphabet[text[currentLocation]]
				matchMask[currentLocation] = charMatch != 0
			}

			bitArr[j] = ((bitArr[j+1] << 1) | 1) & charMatch
			if i > 0 {
				bitArr[j] |= ((at(lastBitArr, j+1) | at(lastBitArr, j)) << 1) | 1 | at(lastBitArr, j+1)
			}

			if bitArr[j]&mask != 0 {
				finalScore = computeScore(patternLen, i, currentLocation, expectedLocation, o)
				if finalScore <= currentThreshold {
					currentThreshold = finalScore
					bestLocation = currentLocation
					if bestLocation <= expectedLocation {
						break
					}
					start = max(1, 2*expectedLocation-bestLocation)
				}
			}
		}

		// No point trying more errors if they cannot beat the best so far.
		if computeScore(patternLen, i+1, expectedLocation, expectedLocation, o) > currentThreshold {
			break
		}
		lastBitArr = bitArr
	}

	res := bitapResult{
		isMatch: bestLocation >= 0,
		score:   math.Max(0.001, finalScore),
	}
	res.indices = maskToIndices(matchMask, o.minMatchCharLength)
	if len(res.indices) == 0 {
		res.isMatch = false
	}
	return res
}

func computeScore(patternLen, errors, currentLocation, expectedLocation int, o bitapOptions) float64 {
	accuracy := float64(errors) / float64(patternLen)
	if o.ignoreLocation {
		return accuracy
	}
	proximity := currentLocation - expectedLocation
	if proximity < 0 {
		proximity = -proximity
	}
	if o.distance == 0 {
		if proximity != 0 {
			return 1
		}
		return accuracy
	}
	return accuracy + float64(proximity)/float64(o.distance)
}

// maskToIndices turns the per-rune match mask into inclusive spans of at
// least minLen runes.
func maskToIndices(mask []bool, minLen int) [][2]int {
	var indices [][2]int
	start := -1
	for i, matched := range mask {
		switch {
		case matched && start == -1:
			start = i
		case !matched && start != -1:
			if end := i - 1; end-start+1 >= minLen {
				indices = append(indices, [2]int{start, end})
			}
			start = -1
		}
	}
	if n := len(mask); n > 0 && mask[n-1] && start != -1 && n-start >= minLen {
		indices = append(indices, [2]int{start, n - 1})
	}
	return indices
}

// mergeIndices sorts spans and folds overlapping or touching ones together.
func mergeIndices(spans [][2]int) [][2]int {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	merged := [][2]int{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s[0] <= last[1]+1 {
			last[1] = max(last[1], s[1])
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func at(arr []uint32, i int) uint32 {
	if i < 0 || i >= len(arr) {
		return 0
	}
	return arr[i]
}

func indexRunes(text, pattern []rune, from int) int {
	if len(pattern) == 0 {
		return -1
	}
	for i := max(0, from); i+len(pattern) <= len(text); i++ {
		if equalRunes(text[i:i+len(pattern)], pattern) {
			return i
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
