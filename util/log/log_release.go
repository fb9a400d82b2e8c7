//go:build release

package log

import "log"

const debugEnabled = false

func init() {
	w, err := newFileWriter(FilePath())
	if err != nil {
		log.Printf("%v, logging to stderr", err)
		return
	}
	log.SetOutput(w)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}
