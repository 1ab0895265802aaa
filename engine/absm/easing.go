package absm

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tanema/gween/ease"
)

// ErrUnknownEasing is returned when an easing name has no matching curve.
var ErrUnknownEasing = errors.New("absm: unknown easing")

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inquad":       ease.InQuad,
	"outquad":      ease.OutQuad,
	"inoutquad":    ease.InOutQuad,
	"incubic":      ease.InCubic,
	"outcubic":     ease.OutCubic,
	"inoutcubic":   ease.InOutCubic,
	"inquart":      ease.InQuart,
	"outquart":     ease.OutQuart,
	"inoutquart":   ease.InOutQuart,
	"insine":       ease.InSine,
	"outsine":      ease.OutSine,
	"inoutsine":    ease.InOutSine,
	"inexpo":       ease.InExpo,
	"outexpo":      ease.OutExpo,
	"inoutexpo":    ease.InOutExpo,
	"incirc":       ease.InCirc,
	"outcirc":      ease.OutCirc,
	"inoutcirc":    ease.InOutCirc,
	"inback":       ease.InBack,
	"outback":      ease.OutBack,
	"inoutback":    ease.InOutBack,
	"outbounce":    ease.OutBounce,
	"inbounce":     ease.InBounce,
	"inoutbounce":  ease.InOutBounce,
	"inelastic":    ease.InElastic,
	"outelastic":   ease.OutElastic,
	"inoutelastic": ease.InOutElastic,
}

// Easing looks up an easing curve by name. Names are case-insensitive and ignore
// '-' and '_', so "in-out-quad", "InOutQuad" and "in_out_quad" are the same curve.
// An empty name is linear.
//
// Parameters:
//   - name: the curve name
//
// Returns:
//   - ease.TweenFunc: the curve
//   - error: ErrUnknownEasing if the name is not recognized
func Easing(name string) (ease.TweenFunc, error) {
	if name == "" {
		return ease.Linear, nil
	}
	key := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(name))
	fn, ok := easings[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEasing, name)
	}
	return fn, nil
}

// EasingNames returns every recognized curve name, sorted.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
