package align

// Default affine gap penalties. The extension penalty matches the
// standard ASJP-calibrated value; opening is sonority-dependent when
// no constant is configured.
const (
	DefaultGapExtend        = -1.75
	DefaultGapOpenConsonant = -2.5
	DefaultGapOpenVowel     = -1.75
)

// GapFunc returns the gap-opening penalty charged when a gap run
// starts against the given symbol. It is the configuration hook for
// character-class-dependent gap policies.
type GapFunc func(sym string) float64

// ConstGap returns a policy charging the same opening penalty for
// every symbol.
func ConstGap(open float64) GapFunc {
	return func(string) float64 { return open }
}

// asjpVowels are the vowel symbols of the ASJP alphabet.
var asjpVowels = map[string]bool{
	"i": true, "e": true, "E": true, "a": true,
	"o": true, "u": true, "3": true,
}

// SonorityGap returns the default character-class policy: gaps open
// more cheaply against vowels than against consonants, reflecting
// that vowels are lost and inserted more freely in sound change.
func SonorityGap() GapFunc {
	return func(sym string) float64 {
		if asjpVowels[sym] {
			return DefaultGapOpenVowel
		}
		return DefaultGapOpenConsonant
	}
}
