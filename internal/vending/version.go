package vending

// EngineVersion is stamped on every journaled run. Bump it whenever Step
// changes observable behavior so old journals are not replayed against new
// rules unnoticed.
const EngineVersion = "0.1.0"
