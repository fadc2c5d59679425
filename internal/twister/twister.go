package twister

// MT19937 parameters. These are fixed by the reference algorithm and must
// not vary: any change breaks bit-for-bit compatibility with published
// raffle results.
const (
	wordSize  = 32
	stateSize = 624 // n
	shiftSize = 397 // m
	maskBits  = 31  // r
	matrixA   = 0x9908B0DF
	temperU   = 11
	temperD   = 0xFFFFFFFF
	temperS   = 7
	temperB   = 0x9D2C5680
	temperT   = 15
	temperC   = 0xEFC60000
	temperL   = 18
	initMult  = 1812433253 // f
	lowerMask = (1 << maskBits) - 1
	wordMask  = (1 << wordSize) - 1
	upperMask = ^uint32(lowerMask) & wordMask
)

// Generator is a single MT19937 state machine.
//
// A Generator is not safe for concurrent use. Each caller is expected to own
// its generator exclusively; construction is cheap enough to build one per
// selection.
type Generator struct {
	state [stateSize]uint32
	index int
}

// New seeds a generator. The seed is a 32-bit word; callers holding wider
// seed material must reduce it mod 2^32 first.
//
// The returned generator starts exhausted (index == 624), so the first call
// to Uint32 regenerates the whole state vector.
func New(seed uint32) *Generator {
	g := &Generator{}
	g.state[0] = seed & wordMask
	for i := 1; i < stateSize; i++ {
		prev := g.state[i-1]
		g.state[i] = (initMult*(prev^(prev>>(wordSize-2))) + uint32(i)) & wordMask
	}
	g.index = stateSize
	return g
}

// Uint32 returns the next tempered output word and advances the cursor.
func (g *Generator) Uint32() uint32 {
	if g.index == stateSize {
		g.twist()
	}

	y := g.state[g.index]
	y ^= (y >> temperU) & temperD
	y ^= (y << temperS) & temperB
	y ^= (y << temperT) & temperC
	y ^= y >> temperL

	g.index++
	return y & wordMask
}

// Intn reduces one output into [0, n) with a plain modulus. This is the
// reduction used by raffle selection; it is not bias-corrected.
//
// Panics if n <= 0.
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		panic("twister: invalid argument to Intn")
	}
	return int(uint64(g.Uint32()) % uint64(n))
}

// Index reports the cursor into the state vector. A value of 624 means the
// next read regenerates the state.
func (g *Generator) Index() int {
	return g.index
}

// twist regenerates the state vector in place.
//
// The loop must run sequentially from 0 to n-1: for i >= n-m the entry at
// (i+m)%n has already been rewritten earlier in the same pass.
func (g *Generator) twist() {
	for i := 0; i < stateSize; i++ {
		x := (g.state[i] & upperMask) + (g.state[(i+1)%stateSize] & lowerMask)
		xa := x >> 1
		if x%2 != 0 {
			xa ^= matrixA
		}
		g.state[i] = g.state[(i+shiftSize)%stateSize] ^ xa
	}
	g.index = 0
}
