package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"
)

// Usage example on the command line:
// > go run main.go -url=http://localhost:8000/ -timeout=2m
func main() {
	urlPtr := flag.String("url", "http://localhost:8000/", "the endpoint that must answer with 200")
	timeoutPtr := flag.Duration("timeout", 0, "give up after this long; 0 waits forever")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	deadline := time.Now().Add(*timeoutPtr)
	totalWaitTime := 0
	for {
		res, err := client.Get(*urlPtr)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println(res.Status)
				break
			}
			fmt.Println(res.Status)
		} else {
			fmt.Println(err)
		}
		if *timeoutPtr > 0 && time.Now().After(deadline) {
			panic(fmt.Sprintf("%s not available after %s", *urlPtr, *timeoutPtr))
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds", totalWaitTime)
		fmt.Println()
		time.Sleep(5 * time.Second)
	}
}
