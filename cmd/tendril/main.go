// Command tendril plays, serves and inspects dialogue script repositories.
package main

func main() {
	Execute()
}
