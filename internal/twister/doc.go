// Package twister implements the MT19937 Mersenne Twister as a plain value
// type.
//
// The generator reproduces the canonical 32-bit reference output exactly:
// seed 1 yields 1791095845 on its first read, and the default C++ seed 5489
// yields 4123659995 on its ten-thousandth. It exists so that raffle results
// drawn from a public block hash can be replayed bit for bit. It is not a
// cryptographic generator and offers no bias correction.
//
// There is no package-level state. Two generators built from the same seed
// produce identical sequences regardless of what any other generator does.
package twister
