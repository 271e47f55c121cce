package app

// MinPlayersToStart is the smallest roster that can leave the lobby. Two or
// three players trigger the small-game variant with ghost seats.
const MinPlayersToStart = 2

// MaxPlayersToStart matches the largest row of the deck distribution table.
const MaxPlayersToStart = 12

// defaultDamageReveals is the number of cards a night-kill target loses in
// small-game mode instead of dying outright.
const defaultDamageReveals = 2
