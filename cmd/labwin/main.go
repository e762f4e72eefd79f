// Command labwin drives the labwind window daemon over D-Bus.
package main

func main() {
	Execute()
}
