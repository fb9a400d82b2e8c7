// Package log wraps the standard logger. Debug output is only written by
// development builds; release builds send everything to a rotated file.
package log

import (
	"fmt"
	"log"
	"os"
)

// Print calls the standard log.Print()
func Print(v ...interface{}) {
	log.Output(2, fmt.Sprint(v...))
}

// Printf calls the standard log.Printf()
func Printf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
}

// Println calls the standard log.Println()
func Println(v ...interface{}) {
	log.Output(2, fmt.Sprintln(v...))
}

// Fatal logs like Print and exits.
func Fatal(v ...interface{}) {
	log.Output(2, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs like Printf and exits.
func Fatalf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Fatalln logs like Println and exits.
func Fatalln(v ...interface{}) {
	log.Output(2, fmt.Sprintln(v...))
	os.Exit(1)
}

// Debug calls log.Print() with a [DEBUG] prefix in development builds.
func Debug(v ...interface{}) {
	if debugEnabled {
		log.Output(2, "[DEBUG] "+fmt.Sprint(v...))
	}
}

// Debugf calls log.Printf() with a [DEBUG] prefix in development builds.
func Debugf(format string, v ...interface{}) {
	if debugEnabled {
		log.Output(2, "[DEBUG] "+fmt.Sprintf(format, v...))
	}
}
