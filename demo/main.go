// Demo binary for the sample package: invokes the three functions and
// prints their results.
package main

import (
	"fmt"

	"codestats/sample"
)

func main() {
	fmt.Println(sample.Greet("Alice"))
	fmt.Println(sample.AddNumbers(1, 2, 3, 4))
	fmt.Println(sample.SayHelloWorld())
}
