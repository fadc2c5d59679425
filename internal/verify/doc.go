// Package verify re-derives a published raffle result from public data.
//
// A run performs the same ordered checks a third party would do by hand:
//
//  1. the claimed block height appears in the winners list
//  2. the reported timestamp is close to the block's timestamp
//  3. the reported short hash is the block's short hash
//  4. the round type is the roller's pick from the round-type list
//  5. the winner is the roller's pick from that block's player list
//
// The run stops at the first failed check. Failed checks are results, not
// errors; errors are reserved for data that could not be fetched or parsed.
package verify
