package searcher

import "math"

// Hyperparameter defaults for MC-RAVE

const (
	DefaultExploration    = math.Sqrt2 // K
	DefaultRaveWeight     = 0.5        // Alpha
	DefaultEpsilon        = 1e-6
	DefaultRolloutLength  = 10
	DefaultMaxTreeDepth   = 100
	DefaultDelayThreshold = 200 // Iterations of uniform rollouts before biasing
)

const negativeMax = -math.MaxFloat64

type raveUCB struct {
	k       float64
	alpha   float64
	epsilon float64
	logN    float64
}

func newRaveUCB(k, alpha, epsilon float64, parentVisits int) raveUCB {
	if parentVisits < 0 {
		panic("parent visits cannot be negative")
	}
	return raveUCB{k: k, alpha: alpha, epsilon: epsilon, logN: math.Log(float64(parentVisits) + 1)}
}

// score returns the noiseless selection value of a child. ownTurn is false
// when an opponent acts at the parent, who is assumed to minimise our value.
func (u raveUCB) score(value float64, visits int, raveBlend float64, ownTurn bool) float64 {
	n := float64(visits) + u.epsilon
	// combined = (1-a)*q/n + a*rave, exploration = K*sqrt(ln(N+1)/n)
	combined := (1-u.alpha)*(value/n) + u.alpha*raveBlend
	if !ownTurn {
		combined = -combined
	}
	return combined + u.k*math.Sqrt(u.logN/n)
}
