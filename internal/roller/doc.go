// Package roller selects a raffle entry from a public block hash.
//
// A selection concatenates the hash hex with a roll token, parses the result
// as a base-16 number, seeds a twister.Generator with its low 32 bits, reads
// exactly one output, and takes that output modulo the number of candidates.
// The token's decimal digits become literal hex digits of the seed, so "12"
// and "2" draw from unrelated seeds.
//
// Different roll tokens drawn from the same block hash give independent
// selections, which is how the round type and the winner are picked for a
// single raffle.
package roller
