// Package sample holds the demonstration functions used as the reference
// input for the metrics engine: a greeting, a four-operand sum, and a
// constant string, plus a value type wrapping the same behaviors.
package sample

import "fmt"

// Greet returns a greeting message for the given name.
func Greet(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}

// AddNumbers returns the sum of the four inputs.
func AddNumbers(a, b, c, d int) int {
	return a + b + c + d
}

// SayHelloWorld returns the fixed greeting.
func SayHelloWorld() string {
	return "Hello, world!"
}

// Greeter duplicates the package functions as methods, with the name
// stored at construction and never mutated afterwards.
type Greeter struct {
	name string
}

// NewGreeter creates a Greeter for the given name.
func NewGreeter(name string) Greeter {
	return Greeter{name: name}
}

// Name returns the name set at construction.
func (g Greeter) Name() string {
	return g.name
}

// Greet returns a greeting message for the stored name.
func (g Greeter) Greet() string {
	return Greet(g.name)
}

// AddNumbers returns the sum of the four inputs.
func (g Greeter) AddNumbers(a, b, c, d int) int {
	return AddNumbers(a, b, c, d)
}

// SayHelloWorld returns the fixed greeting.
func (g Greeter) SayHelloWorld() string {
	return SayHelloWorld()
}
