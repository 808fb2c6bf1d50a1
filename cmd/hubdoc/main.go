// Package main provides the hubdoc CLI for validating TF Hub documentation.
package main

func main() {
	Execute()
}
