package stochastic

import "github.com/alan-christopher/qsim/qsim/quantum"

// ConstInt returns an IntProvider that always yields n.
func ConstInt(n int) IntProvider {
	return IntFunc(func() int { return n })
}

// ConstBool returns a BoolProvider that always yields b.
func ConstBool(b bool) BoolProvider {
	return BoolFunc(func() bool { return b })
}

// IdentityState returns a StateTransform that introduces no noise.
func IdentityState() StateTransform {
	return StateFunc(func(s quantum.State) quantum.State { return s })
}

// IdentityBasis returns a BasisTransform that introduces no misalignment.
func IdentityBasis() BasisTransform {
	return BasisFunc(func(b quantum.Basis) quantum.Basis { return b })
}

// CycleInt returns an IntProvider replaying vals in order, wrapping around at
// the end. vals must be non-empty.
func CycleInt(vals ...int) IntProvider {
	i := 0
	return IntFunc(func() int {
		v := vals[i%len(vals)]
		i++
		return v
	})
}

// CycleBool returns a BoolProvider replaying vals in order, wrapping around at
// the end. vals must be non-empty.
func CycleBool(vals ...bool) BoolProvider {
	i := 0
	return BoolFunc(func() bool {
		v := vals[i%len(vals)]
		i++
		return v
	})
}
