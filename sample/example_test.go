package sample_test

import (
	"fmt"

	"codestats/sample"
)

func ExampleGreet() {
	fmt.Println(sample.Greet("Alice"))
	// Output: Hello, Alice!
}

func ExampleAddNumbers() {
	fmt.Println(sample.AddNumbers(1, 2, 3, 4))
	// Output: 10
}

func ExampleSayHelloWorld() {
	fmt.Println(sample.SayHelloWorld())
	// Output: Hello, world!
}

func ExampleGreeter() {
	g := sample.NewGreeter("Alice")
	fmt.Println(g.Greet())
	fmt.Println(g.AddNumbers(1, 2, 3, 4))
	fmt.Println(g.SayHelloWorld())
	// Output:
	// Hello, Alice!
	// 10
	// Hello, world!
}
