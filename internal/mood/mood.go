// Package mood holds the mood enumeration and the aggregations the pages
// and the stats endpoint are built on.
package mood

const (
	Happy   = "happy"
	Sad     = "sad"
	Angry   = "angry"
	Anxious = "anxious"
	Neutral = "neutral"
)

// All lists every mood value in its fixed display order. Count maps are
// iterated in this order so tie-breaks stay deterministic.
var All = []string{Happy, Sad, Angry, Anxious, Neutral}

const (
	MethodManual = "manual"
	MethodCamera = "camera"
)

func Valid(m string) bool {
	for _, v := range All {
		if m == v {
			return true
		}
	}
	return false
}

func ValidMethod(m string) bool {
	return m == MethodManual || m == MethodCamera
}
