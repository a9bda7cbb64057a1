// The cuesheet command runs demo timelines from the command line.
package main

func main() {
	Execute()
}
