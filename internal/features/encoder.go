package features

import "sort"

// UnseenCode is returned when encoding a value that was not present in the
// training set. It marks novel categories without failing the scoring pass.
const UnseenCode = -1

// Encoder maps the distinct values of one categorical field to stable
// integer codes. The mapping is built once at training time and frozen;
// the integer assigned to a value carries no meaning beyond round-tripping
// within one trained model version.
type Encoder struct {
	Codes map[string]int `json:"codes"`
}

// FitEncoder builds an encoder from the training set's values. Distinct
// values are sorted before assignment so the same training set always
// produces the same mapping.
func FitEncoder(values []string) *Encoder {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}

	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)

	codes := make(map[string]int, len(classes))
	for i, v := range classes {
		codes[v] = i
	}
	return &Encoder{Codes: codes}
}

// Encode returns the code for a value, or UnseenCode for values not present
// at fit time. Total function: it never fails.
func (e *Encoder) Encode(value string) int {
	if e == nil || e.Codes == nil {
		return UnseenCode
	}
	if code, ok := e.Codes[value]; ok {
		return code
	}
	return UnseenCode
}

// Classes returns the known values in code order.
func (e *Encoder) Classes() []string {
	classes := make([]string, 0, len(e.Codes))
	for v := range e.Codes {
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return classes
}
