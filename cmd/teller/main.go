// Command teller runs the Amen Bank conversational assistant: an HTTP chat API,
// an interactive terminal chat and operator tools for stored sessions.
package main

func main() {
	Execute()
}
