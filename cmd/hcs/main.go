// Command hcs moves the mouse pointer with hand gestures seen by a webcam.
package main

func main() {
	Execute()
}
