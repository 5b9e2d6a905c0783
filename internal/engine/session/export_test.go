package session

// Bridge exposes bridge for testing.
var Bridge = bridge

// Prompt exposes prompt for testing.
var Prompt = prompt
