package redis

import "fmt"

// Key prefix for all gomoku data
const keyPrefix = "gomoku"

// playersKey is the hash of username key -> JSON player record
func playersKey() string {
	return fmt.Sprintf("%s:players", keyPrefix)
}
