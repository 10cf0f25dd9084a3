// cmd/scangaps/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/saadimalik211/cv-scanner/internal/gaps"
)

const layout = "2006-01-02 15:04:05-07:00"

func main() {
	match := flag.String("match", gaps.ScanMessage,
		`only lines containing this text are analysed ("" for every line, e.g. a broadcast capture)`)
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: scangaps [-match text] <logfile>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("open failed: %v", err)
	}
	defer f.Close()

	rep, err := gaps.Analyze(f, *match)
	if errors.Is(err, gaps.ErrNoTimestamps) {
		fmt.Println("No valid timestamps found.")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("analyse failed: %v", err)
	}

	fmt.Printf("Total duration: %s to %s\n", rep.Start.Format(layout), rep.End.Format(layout))
	fmt.Printf("Missing seconds (%d total):\n", len(rep.Missing))
	for _, ts := range rep.Missing {
		fmt.Println(ts.Format(layout))
	}
}
