// README: Developer CLI over the fare estimation core.
package main

func main() {
	Execute()
}
