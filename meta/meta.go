package meta

// GO_ROUTINES defines the number of goroutines running simulations.
const GO_ROUTINES = 1

// SIMULATIONS defines the number of simulations per decision.
const SIMULATIONS = 1000

// DEPTH defines the maximum search depth.
const DEPTH = 10

// EXPLORATION defines the UCB exploration constant.
const EXPLORATION = 10.0

// EPISODES defines the number of episodes per experiment configuration.
const EPISODES = 10

// MAX_STEPS defines the step limit of an episode.
const MAX_STEPS = 20
