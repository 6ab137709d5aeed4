package audiosink

import (
	"strings"

	"github.com/samber/lo"
)

// classifier decides whether a sink name belongs to a network sink
type classifier struct {
	markers []string
}

func newClassifier(markers []string) classifier {
	return classifier{
		markers: lo.FilterMap(markers, func(m string, _ int) (string, bool) {
			m = strings.ToLower(strings.TrimSpace(m))
			return m, m != ""
		}),
	}
}

// IsRemote reports whether the sink forwards audio to a network device
func (c classifier) IsRemote(sink string) bool {
	name := strings.ToLower(sink)
	if name == "" {
		return false
	}
	return lo.ContainsBy(c.markers, func(marker string) bool {
		return strings.Contains(name, marker)
	})
}
